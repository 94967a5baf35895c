package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/Seyramize/BE-sub000/internal/guestlist"
	"github.com/Seyramize/BE-sub000/internal/installment"
	"github.com/Seyramize/BE-sub000/internal/mailer"
	"github.com/Seyramize/BE-sub000/internal/payment"
	"github.com/Seyramize/BE-sub000/internal/repository"
	appvalidator "github.com/Seyramize/BE-sub000/internal/validator"
	"github.com/Seyramize/BE-sub000/internal/vcs"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/stripe/stripe-go/v82"
)

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate
	mailer    mailer.Mailer
	guestlist domain.Guestlist

	experienceRepo   domain.ExperienceRepository
	bookingRepo      domain.BookingRepository
	installmentRepo  domain.InstallmentRepository
	notificationRepo domain.NotificationRepository

	paymentProvider domain.PaymentProvider
	installments    *installment.Service
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type SheetsConfig struct {
	ServiceAccountEmail string
	PrivateKey          string
	SheetID             string
}

type Config struct {
	Port             int
	Env              string
	BaseURL          string
	TeamEmail        string
	CronSecret       string
	OtelCollectorUrl string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Stripe           StripeConfig
	Sheets           SheetsConfig
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	flag.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.BaseURL, "base-url", envString("BASE_URL", "http://localhost:3000"), "Public base URL of the storefront")
	flag.StringVar(&cfg.TeamEmail, "team-email", envString("TEAM_EMAIL", "bookings@beyondaccra.com"), "Internal team notification address")
	flag.StringVar(&cfg.CronSecret, "cron-secret", os.Getenv("CRON_SECRET"), "Bearer token for the installment sweep endpoint")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", os.Getenv("OTEL_COLLECTOR_URL"), "OpenTelemetry collector URL")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", envString("SMTP_HOST", "sandbox.smtp.mailtrap.io"), "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", envString("SMTP_SENDER", "Beyond Experiences <no-reply@beyondaccra.com>"), "SMTP sender")

	flag.StringVar(&cfg.Stripe.SecretKey, "stripe-key", os.Getenv("STRIPE_SECRET_KEY"), "Stripe secret key")
	flag.StringVar(&cfg.Stripe.WebhookSecret, "stripe-webhook-secret", os.Getenv("STRIPE_WEBHOOK_SECRET"), "Stripe webhook secret")

	flag.StringVar(&cfg.Sheets.ServiceAccountEmail, "sheets-service-account", os.Getenv("GOOGLE_SERVICE_ACCOUNT_EMAIL"), "Google service account email")
	flag.StringVar(&cfg.Sheets.PrivateKey, "sheets-private-key", os.Getenv("GOOGLE_PRIVATE_KEY"), "Google service account private key")
	flag.StringVar(&cfg.Sheets.SheetID, "sheets-id", os.Getenv("GOOGLE_SHEET_ID"), "Guestlist spreadsheet id")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stripe.Key = cfg.Stripe.SecretKey

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)

	var guests domain.Guestlist = guestlist.NoopGuestlist{}
	if cfg.Sheets.ServiceAccountEmail != "" && cfg.Sheets.SheetID != "" {
		guests, err = guestlist.NewSheetsGuestlist(context.Background(), cfg.Sheets.ServiceAccountEmail, cfg.Sheets.PrivateKey, cfg.Sheets.SheetID)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("Google Sheets credentials not set, guestlist appends disabled")
	}

	stripeProvider := payment.NewStripePaymentProvider(
		cfg.BaseURL+"/booking-confirmation",
		cfg.BaseURL+"/booking-cancelled",
	)

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		smtpMailer,
		guests,
		repository.NewPostgresExperienceRepository(db),
		repository.NewPostgresBookingRepository(db),
		repository.NewPostgresInstallmentRepository(db),
		repository.NewPostgresNotificationRepository(db),
		stripeProvider,
	)

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	return app.serve()
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	mailer mailer.Mailer,
	guests domain.Guestlist,
	experienceRepo domain.ExperienceRepository,
	bookingRepo domain.BookingRepository,
	installmentRepo domain.InstallmentRepository,
	notificationRepo domain.NotificationRepository,
	paymentProvider domain.PaymentProvider,
) *Application {

	app := &Application{
		config:           cfg,
		logger:           logger,
		db:               db,
		redis:            redisClient,
		validator:        validator,
		mailer:           mailer,
		guestlist:        guests,
		experienceRepo:   experienceRepo,
		bookingRepo:      bookingRepo,
		installmentRepo:  installmentRepo,
		notificationRepo: notificationRepo,
		paymentProvider:  paymentProvider,
	}

	app.installments = installment.NewService(logger, installmentRepo, paymentProvider, app)

	return app
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("experiences-booking-api", otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)

	r.Get("/health", app.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/create-checkout-session", app.CreateCheckoutSessionHandler)
		r.Post("/create-installment-checkout-session", app.CreateInstallmentCheckoutSessionHandler)

		r.Post("/webhooks/stripe", app.StripeWebhookHandler)

		r.With(app.requireCronSecret).Route("/cron/process-installments", func(r chi.Router) {
			r.Get("/", app.ProcessInstallmentsHandler)
			r.Post("/", app.ProcessInstallmentsHandler)
		})

		r.Get("/booking-details", app.GetBookingDetailsHandler)
		r.Get("/installment-status/{bookingId}", app.GetPlanStatusHandler)

		r.Get("/experiences", app.GetExperiencesHandler)
		r.Get("/experiences/{slug}", app.GetExperienceHandler)
		r.Get("/slots/{experienceId}", app.GetSlotsHandler)
	})

	return r
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
