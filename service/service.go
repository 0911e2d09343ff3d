package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookings/booking"
	"bookings/http"
	"bookings/message"
	"bookings/postgres"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	forwarder  *message.Forwarder
	msgRouter  *message.Router
	httpRouter *echo.Echo
	httpAddr   string
}

func New(
	logger watermill.LoggerAdapter,
	redisClient *redis.Client,
	db *sqlx.DB,
	httpAddr string,
) (*Service, error) {
	bookingRepo := postgres.NewBookingRepo(db, logger)
	eventRepo := postgres.NewEventRepo(db)
	auditRepo := postgres.NewAuditLogRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)

	svc := booking.NewService(eventRepo, bookingRepo, notificationRepo, auditRepo)

	msgRouter, err := message.NewRouter(message.RouterDeps{
		Logger:        logger,
		RedisClient:   redisClient,
		Events:        eventRepo,
		Promoter:      bookingRepo,
		Audit:         auditRepo,
		Notifications: notificationRepo,
	})
	if err != nil {
		return nil, fmt.Errorf("creating message router: %w", err)
	}

	forwarder, err := message.NewForwarder(db, redisClient, logger)
	if err != nil {
		return nil, fmt.Errorf("creating forwarder: %w", err)
	}

	httpRouter := http.NewRouter(svc, eventRepo)

	return &Service{
		forwarder:  forwarder,
		msgRouter:  msgRouter,
		httpRouter: httpRouter,
		httpAddr:   httpAddr,
	}, nil
}

func (s Service) Run(ctx context.Context) error {
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.forwarder.Run(runCtx); err != nil {
			return fmt.Errorf("running forwarder: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		if err := s.msgRouter.Run(runCtx); err != nil {
			return fmt.Errorf("running messaging router: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		// Wait for message router
		<-s.msgRouter.Running()

		logrus.Info("Starting HTTP server...")
		err := s.httpRouter.Start(s.httpAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logrus.Info("Shutting down HTTP server...")
		if err := s.httpRouter.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("waiting for shutdown: %w", err)
	}
	logrus.Info("Shutdown complete.")

	return nil
}
