// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"veriauth/auth-api/db"
	"veriauth/auth-api/internal/auth"
	"veriauth/auth-api/internal/service"
	"veriauth/auth-api/internal/store"
	"veriauth/auth-api/pkg/middleware"
	"veriauth/auth-api/pkg/security"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	Router *gin.Engine
	Auth   *auth.Service
	Users  auth.UserStore

	// TestMode echoes verification codes in API responses instead of
	// relying on mail delivery. Never enable outside tests or demos.
	TestMode bool
}

func NewRouter() (*API, error) {
	makeLogger()

	a := &API{
		TestMode: viper.GetBool("verification.test_mode"),
	}

	users, err := makeUserStore()
	if err != nil {
		return nil, err
	}
	a.Users = users

	var mailer auth.Mailer = service.LogMailer{}
	if viper.GetBool("mail.enabled") {
		mailer = service.NewSMTPMailer()
	}

	a.Auth = auth.NewService(
		users,
		store.NewCodeRegistry(),
		security.NewArgonHash(),
		security.NewTokenCodec([]byte(viper.GetString("jwt.secret")), viper.GetDuration("jwt.ttl")),
		mailer,
		viper.GetDuration("verification.code_ttl"),
	)

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true

	a.registerRoutes()

	return a, nil
}

func (a *API) registerRoutes() {
	gate := middleware.NewAuthGate(a.Auth)

	// GET /health 			-> Used to check if the server is alive
	a.Router.GET("/health", a.Heartbeat)

	main := a.Router.Group("/api", middleware.BodySizeLimiter(1<<20))
	{
		// HEAD /api/validate		-> Validates a bearer token
		main.HEAD("/validate", gate, a.Validate)

		// GET /api/profile		-> Returns the authenticated user's record
		main.GET("/profile", gate, a.UserProfile)

		// GET /api/dashboard		-> Example protected resource
		main.GET("/dashboard", gate, a.UserDashboard)

		// DELETE /api/users		-> Deletes the authenticated user's account
		main.DELETE("/users", gate, a.UserDelete)
	}

	authGroup := main.Group("/auth")
	{
		// POST /api/auth/signup		-> Registers a new user
		authGroup.POST("/signup", a.AuthSignup)

		// POST /api/auth/verify-email		-> Confirms a verification code
		authGroup.POST("/verify-email", a.AuthVerifyEmail)

		// POST /api/auth/resend-verification	-> Issues a fresh verification code
		authGroup.POST("/resend-verification", a.AuthResend)

		// POST /api/auth/login			-> Logs in a user and returns a bearer token
		authGroup.POST("/login", a.AuthLogin)
	}
}

func makeUserStore() (auth.UserStore, error) {
	switch viper.GetString("storage.type") {
	case "sqlite":
		conn, err := db.New()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite database, %w", err)
		}
		return store.NewGormStore(conn), nil
	default:
		return store.NewMemoryStore(), nil
	}
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
