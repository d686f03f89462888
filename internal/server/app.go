// Package server wires the TOTPKeeper server together. It opens the
// configured storage backend, builds the account service and runs the gRPC
// endpoint next to the Prometheus metrics listener until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/dmitrijs2005/totpkeeper/internal/cryptox"
	"github.com/dmitrijs2005/totpkeeper/internal/logging"
	"github.com/dmitrijs2005/totpkeeper/internal/server/config"
	"github.com/dmitrijs2005/totpkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/totpkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/totpkeeper/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/totpkeeper/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

var openRepositories = repomanager.New

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	metrics  *metrics.Metrics
	accounts *services.AccountService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	key, err := cryptox.ParseKey(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	defer common.WipeByteArray(key)

	enc, err := cryptox.NewEncryptor(key)
	if err != nil {
		return nil, fmt.Errorf("encryptor init error: %w", err)
	}

	hasher, err := cryptox.NewPasswordHasher(c.PasswordHasher, c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	rm, err := openRepositories(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := metrics.New()

	as, err := services.NewAccountService(
		rm.Accounts(),
		hasher,
		cryptox.NewSecretGenerator(nil),
		enc,
		logger,
		services.WithIssuer(c.TOTPIssuer),
		services.WithEvents(m),
	)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("account service init error: %w", err)
	}

	return &App{config: c, logger: logger, repos: rm, metrics: m, accounts: as}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startMetricsServer(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())

	srv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the listeners fails. Storage is closed before it returns.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accounts, app.metrics)
		return s.Run(gctx)
	})

	if app.config.MetricsAddr != "" {
		g.Go(func() error {
			return app.startMetricsServer(gctx)
		})
	}

	err := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if cerr := app.repos.Close(closeCtx); cerr != nil {
		app.logger.Error(ctx, "closing storage", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
