package service

import (
	"context"
	"errors"
	"fmt"
	"ticketledger/db"
	"ticketledger/http"
	"ticketledger/ledger"
	"ticketledger/message"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Deps struct {
	Logger      watermill.LoggerAdapter
	RedisClient *redis.Client
	DB          *sqlx.DB
	HTTPAddr    string
}

type Service struct {
	forwarder  *message.Forwarder
	msgRouter  *message.Router
	httpRouter *echo.Echo
	httpAddr   string
}

func New(deps Deps) (*Service, error) {
	// The forwarder creates the outbox table the event bus writes to.
	fwd, err := message.NewForwarder(deps.DB, deps.RedisClient, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating forwarder: %w", err)
	}

	outbox, err := message.NewOutboxPublisher(deps.DB, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating outbox publisher: %w", err)
	}

	eventBus, err := message.NewEventBus(outbox, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}

	l := ledger.New(eventBus)
	sales := message.NewSalesReadModel(l.ID())
	logrus.WithField("ledger_id", l.ID()).Info("Ledger created")

	msgRouter, err := message.NewRouter(message.RouterDeps{
		EventProcessorConfig: message.NewEventProcessorConfig(deps.RedisClient, deps.Logger),
		EventRepo:            db.NewEventRepo(deps.DB),
		Logger:               deps.Logger,
		SalesReadModel:       sales,
		TicketRepo:           db.NewTicketRepo(deps.DB),
	})
	if err != nil {
		return nil, fmt.Errorf("creating message router: %w", err)
	}

	httpAddr := deps.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	return &Service{
		forwarder:  fwd,
		msgRouter:  msgRouter,
		httpRouter: http.NewRouter(l, sales, db.NewProjection(deps.DB, l.ID())),
		httpAddr:   httpAddr,
	}, nil
}

func (s Service) Run(ctx context.Context) error {
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.forwarder.Run(runCtx); err != nil {
			return fmt.Errorf("running outbox forwarder: %w", err)
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
		// Wait for message router and forwarder
		select {
		case <-s.msgRouter.Running():
		case <-runCtx.Done():
			return nil
		}
		select {
		case <-s.forwarder.Running():
		case <-runCtx.Done():
			return nil
		}

		logrus.WithField("addr", s.httpAddr).Info("Starting HTTP server...")
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
