// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"github.com/planoraforstudents/PlanoraForStudents/db"
	"github.com/planoraforstudents/PlanoraForStudents/middleware"
	"github.com/planoraforstudents/PlanoraForStudents/security"
	"github.com/planoraforstudents/PlanoraForStudents/service"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB        *gorm.DB
	Router    *gin.Engine
	Argon     *security.ArgonHash
	Tokens    *security.TokenIssuer
	Mailer    service.Mailer
	Generator service.RoadmapGenerator
}

func NewRouter() (*API, error) {
	database, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	makeLogger()

	a := &API{
		DB:        database,
		Argon:     security.NewArgon(),
		Mailer:    service.NewSMTPMailer(),
		Generator: service.NewGeminiClient(),
		Tokens: security.NewTokenIssuer(
			viper.GetString("security.jwt_secret"),
			time.Duration(viper.GetInt("security.access_ttl"))*time.Minute,
			time.Duration(viper.GetInt("security.refresh_ttl"))*time.Minute,
		),
	}

	a.setupRoutes()

	service.PasscodeCleanup(time.Minute*10, database)

	return a, nil
}

func (a *API) setupRoutes() {
	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("cors.allowed_origins"),
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
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
	router.RedirectFixedPath = true

	jwt := middleware.NewJWTMiddleware(a.DB, a.Tokens)
	authLimit := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: viper.GetInt("rate.rps"),
		Burst:             viper.GetInt("rate.burst"),
	})

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a JWT token
		main.HEAD("/validate", jwt, a.Validate)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/users/register 			-> Creates a pending account and mails a code
		users.POST("/register", authLimit, a.UserRegister)

		// POST /api/users/verify-otp 			-> Activates a pending account
		users.POST("/verify-otp", authLimit, a.UserVerifyOTP)

		// POST /api/users/login 			-> Logs in a user and returns a token pair
		users.POST("/login", authLimit, a.UserLogin)

		// POST /api/users/resend-otp 			-> Reissues and mails a registration code
		users.POST("/resend-otp", authLimit, a.UserResendOTP)

		// POST /api/users/request-password-reset	-> Mails a reset code to an active account
		users.POST("/request-password-reset", authLimit, a.UserRequestPasswordReset)

		// POST /api/users/verify-reset-otp		-> Consumes a reset code
		users.POST("/verify-reset-otp", authLimit, a.UserVerifyResetOTP)

		// POST /api/users/reset-password		-> Updates the password after a verified reset
		users.POST("/reset-password", authLimit, a.UserResetPassword)

		// GET /api/users/profile			-> Returns the logged in user's profile
		users.GET("/profile", jwt, a.UserProfile)
	}

	tasks := main.Group("/tasks", jwt, middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/tasks		-> Returns the user's tasks
		tasks.GET("", a.TaskFetchBulk)

		// POST /api/tasks		-> Creates a new task
		tasks.POST("", a.TaskCreate)

		// GET /api/tasks/summary	-> Returns today's productivity summary
		tasks.GET("/summary", a.TaskSummary)
	}

	events := main.Group("/events", jwt, middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/events		-> Returns the user's calendar events
		events.GET("", a.EventFetchBulk)

		// POST /api/events		-> Creates a new calendar event
		events.POST("", a.EventCreate)
	}

	roadmaps := main.Group("/roadmaps", jwt, middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/roadmaps		-> Returns the user's roadmaps with steps
		roadmaps.GET("", a.RoadmapFetchBulk)

		// POST /api/roadmaps		-> Creates an empty roadmap
		roadmaps.POST("", a.RoadmapCreate)

		// POST /api/roadmaps/generate	-> Generates a roadmap from a goal
		roadmaps.POST("/generate", a.RoadmapGenerate)
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

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
