package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fassa-ttu/fassa-backend/internal/handlers"
	"github.com/fassa-ttu/fassa-backend/internal/mailer"
	"github.com/fassa-ttu/fassa-backend/internal/repository"
	"github.com/fassa-ttu/fassa-backend/internal/service"
	"github.com/fassa-ttu/fassa-backend/pkg/config"
	"github.com/fassa-ttu/fassa-backend/pkg/database"
	"github.com/fassa-ttu/fassa-backend/pkg/events"
	"github.com/fassa-ttu/fassa-backend/pkg/logger"
	mw "github.com/fassa-ttu/fassa-backend/pkg/middleware"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(cfg.Database); err != nil {
		logger.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	accountRepo := repository.NewAccountRepository(pool)
	resetRepo := repository.NewResetRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	timetableRepo := repository.NewTimetableRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)
	rateLimitRepo := repository.NewRateLimitRepository(redisClient)

	// Services
	mailService := selectMailer(cfg)
	accountService := service.NewAccountService(accountRepo, resetRepo, mailService, eventBus, cfg)
	recordsService := service.NewRecordsService(courseRepo, timetableRepo, registrationRepo, eventBus)

	h := handlers.New(accountService, recordsService, rateLimitRepo, cfg)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.With(h.RateLimit("register", 5, time.Minute)).Post("/register", h.Register)
		r.Get("/verify/{token}", h.Verify)
		r.With(h.RateLimit("login", 10, time.Minute)).Post("/login", h.Login)
		r.Post("/refresh", h.RefreshToken)
		r.With(h.RateLimit("password_reset", 5, time.Minute)).Post("/password-reset/request", h.RequestPasswordReset)
		r.Post("/password-reset/confirm", h.ConfirmPasswordReset)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/me", h.GetProfile)
		r.Patch("/me", h.UpdateProfile)

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.CreateAccount)
			r.Get("/", h.ListAccounts)
			r.Get("/{id}", h.GetAccount)
			r.Patch("/{id}", h.UpdateAccount)
			r.Delete("/{id}", h.DeleteAccount)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.ListCourses)
			r.Post("/", h.CreateCourse)
			r.Get("/{id}", h.GetCourse)
			r.Put("/{id}", h.UpdateCourse)
			r.Delete("/{id}", h.DeleteCourse)
		})

		r.Route("/timetable", func(r chi.Router) {
			r.Get("/", h.ListTimetable)
			r.Post("/", h.CreateTimetableEntry)
			r.Put("/{id}", h.UpdateTimetableEntry)
			r.Delete("/{id}", h.DeleteTimetableEntry)
		})

		r.Post("/registrations", h.RegisterForCourse)
		r.Get("/my/courses", h.ListMyCourses)
		r.Get("/my/timetable", h.ListMyTimetable)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}

// selectMailer picks the delivery backend: dev mode logs mail, a
// MailerSend key takes precedence over plain SMTP.
func selectMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		logger.Info("Email dev mode enabled, printing emails to logs")
		return mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	default:
		return mailer.NewSMTPMailer(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.FromEmail,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPass,
			cfg.Email.SMTPUseTLS,
		)
	}
}
