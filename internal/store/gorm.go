package store

import (
	"errors"

	"veriauth/auth-api/internal/auth"
	"veriauth/auth-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormStore implements the user store on a SQL database. Only the user
// records go through it; verification codes stay in memory either way.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByID(id string) (*model.User, bool) {
	return s.findWhere("id = ?", id)
}

func (s *GormStore) FindByUsername(username string) (*model.User, bool) {
	return s.findWhere("username = ?", username)
}

func (s *GormStore) FindByEmail(email string) (*model.User, bool) {
	return s.findWhere("email = ?", email)
}

func (s *GormStore) findWhere(query string, arg string) (*model.User, bool) {
	var user model.User

	err := s.db.Where(query, arg).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Error("Failed to look up user", zap.Error(err))
		}
		return nil, false
	}

	return &user, true
}

// Create runs the uniqueness checks and the insert in one transaction.
// The unique indexes on username and email are the backstop for drivers
// with weaker isolation.
func (s *GormStore) Create(u *model.User) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64

		if err := tx.Model(&model.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return auth.ErrDuplicateUsername
		}

		if err := tx.Model(&model.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return auth.ErrDuplicateEmail
		}

		return tx.Create(u).Error
	})
}

func (s *GormStore) Update(id string, patch model.UserPatch) (*model.User, bool) {
	fields := map[string]any{}

	if patch.Username != nil {
		fields["username"] = *patch.Username
	}
	if patch.Email != nil {
		fields["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		fields["password_hash"] = *patch.PasswordHash
	}
	if patch.Verified != nil {
		fields["verified"] = *patch.Verified
	}

	var user model.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}

		if len(fields) == 0 {
			return nil
		}

		return tx.Model(&user).Updates(fields).Error
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Error("Failed to update user", zap.Error(err))
		}
		return nil, false
	}

	return &user, true
}

func (s *GormStore) Delete(id string) bool {
	res := s.db.Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		zap.L().Error("Failed to delete user", zap.Error(res.Error))
		return false
	}

	return res.RowsAffected > 0
}
