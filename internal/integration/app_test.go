package integration_test

import (
	"log/slog"
	"os"

	"github.com/Seyramize/BE-sub000/internal/app"
	"github.com/Seyramize/BE-sub000/internal/guestlist"
	"github.com/Seyramize/BE-sub000/internal/mailer"
	"github.com/Seyramize/BE-sub000/internal/payment"
	"github.com/Seyramize/BE-sub000/internal/repository"
	appvalidator "github.com/Seyramize/BE-sub000/internal/validator"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TestApp struct {
	App    *app.Application
	DB     *pgxpool.Pool
	Mailer *mailer.MockMailer
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	mockMailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	experienceRepo := repository.NewPostgresExperienceRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)
	installmentRepo := repository.NewPostgresInstallmentRepository(db)
	notificationRepo := repository.NewPostgresNotificationRepository(db)

	paymentProvider := payment.NewMockPaymentProvider()

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mockMailer,
		&guestlist.NoopGuestlist{},
		experienceRepo,
		bookingRepo,
		installmentRepo,
		notificationRepo,
		paymentProvider,
	)

	return &TestApp{
		App:    application,
		DB:     db,
		Mailer: mockMailer,
	}, nil
}
