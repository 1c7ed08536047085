// Package auth implements the authentication core: the signup -> verify ->
// login state machine and bearer-token issuance/validation. It owns all
// mutations of the user store and the code registry; everything else only
// consumes the identities it derives.
package auth

import (
	"fmt"
	"time"

	"veriauth/auth-api/internal/model"
	"veriauth/auth-api/pkg/security"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const (
	idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idLength  = 16
)

// UserStore is the credential store contract. Create must be atomic with
// respect to the username/email uniqueness checks so that concurrent
// signups can't both succeed.
type UserStore interface {
	FindByID(id string) (*model.User, bool)
	FindByUsername(username string) (*model.User, bool)
	FindByEmail(email string) (*model.User, bool)
	Create(u *model.User) error
	Update(id string, patch model.UserPatch) (*model.User, bool)
	Delete(id string) bool
}

// CodeRegistry holds at most one live verification code per user. Consume
// must check existence, expiry and the code value and delete the record in
// one atomic step.
type CodeRegistry interface {
	Set(userID, code string, expiresAt time.Time)
	Get(userID string) (*model.VerificationCode, bool)
	Delete(userID string)
	Consume(userID, code string, now time.Time) error
}

// Mailer delivers verification codes out of band. Implementations live in
// internal/service.
type Mailer interface {
	SendVerificationCode(to, code string, ttl time.Duration) error
}

type Service struct {
	users   UserStore
	codes   CodeRegistry
	argon   *security.ArgonHash
	tokens  *security.TokenCodec
	mailer  Mailer
	codeTTL time.Duration
}

func NewService(users UserStore, codes CodeRegistry, argon *security.ArgonHash, tokens *security.TokenCodec, mailer Mailer, codeTTL time.Duration) *Service {
	return &Service{
		users:   users,
		codes:   codes,
		argon:   argon,
		tokens:  tokens,
		mailer:  mailer,
		codeTTL: codeTTL,
	}
}

// Signup registers a new unverified user and issues their first
// verification code. The returned code is only ever shown to clients in
// test mode; normally it travels through the Mailer alone.
func (s *Service) Signup(username, email, password string) (userID, code string, err error) {
	// Fail fast before the expensive hash. The store's atomic Create
	// repeats these checks under its lock, so a race between two signups
	// still ends with exactly one winner.
	if _, found := s.users.FindByUsername(username); found {
		return "", "", ErrDuplicateUsername
	}
	if _, found := s.users.FindByEmail(email); found {
		return "", "", ErrDuplicateEmail
	}

	hash, err := s.argon.GenerateFromPassword(password)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password, %w", err)
	}

	userID, err = gonanoid.Generate(idCharset, idLength)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate user ID, %w", err)
	}

	if err := s.users.Create(&model.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}); err != nil {
		return "", "", err
	}

	zap.L().Info("User created", zap.String("username", username))

	code, err = s.issueCode(userID, email)
	if err != nil {
		return "", "", err
	}

	return userID, code, nil
}

// VerifyEmail consumes the user's pending verification code and marks the
// user verified. An expired code is purged as a side effect, so retrying
// with it yields ErrCodeNotFound.
func (s *Service) VerifyEmail(userID, code string) error {
	if err := s.codes.Consume(userID, code, time.Now()); err != nil {
		return err
	}

	user, found := s.users.FindByID(userID)
	if !found {
		return ErrUserNotFound
	}

	verified := true
	s.users.Update(userID, model.UserPatch{Verified: &verified})

	zap.L().Info("User verified", zap.String("username", user.Username))
	return nil
}

// ResendCode replaces the user's pending verification code with a fresh
// one. Only the newest code verifies afterwards.
func (s *Service) ResendCode(userID string) (string, error) {
	user, found := s.users.FindByID(userID)
	if !found {
		return "", ErrUserNotFound
	}

	if user.Verified {
		return "", ErrAlreadyVerified
	}

	return s.issueCode(userID, user.Email)
}

// Login checks the credentials of a verified user and mints a bearer
// token. Unknown usernames and wrong passwords fail identically.
func (s *Service) Login(username, password string) (string, *model.User, error) {
	user, found := s.users.FindByUsername(username)
	if !found {
		return "", nil, ErrInvalidCredentials
	}

	if !user.Verified {
		return "", nil, ErrEmailNotVerified
	}

	ok, err := s.argon.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify password, %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token, %w", err)
	}

	zap.L().Info("User logged in", zap.String("username", username))
	return token, user, nil
}

// VerifyToken validates a bearer token and returns the identity it
// asserts. Every failure surfaces as ErrInvalidToken so the caller can't
// tell a forged token from an expired one.
func (s *Service) VerifyToken(token string) (userID, username string, err error) {
	userID, username, err = s.tokens.Verify(token)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	return userID, username, nil
}

func (s *Service) issueCode(userID, email string) (string, error) {
	code, err := security.GenerateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code, %w", err)
	}

	s.codes.Set(userID, code, time.Now().Add(s.codeTTL))

	if err := s.mailer.SendVerificationCode(email, code, s.codeTTL); err != nil {
		return "", fmt.Errorf("failed to send verification code, %w", err)
	}

	return code, nil
}
