// Package server wires the B-Pay components together and runs the HTTP API
// until the process is signalled.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bpay/bpay/internal/logging"
	"github.com/bpay/bpay/internal/server/auth"
	"github.com/bpay/bpay/internal/server/config"
	"github.com/bpay/bpay/internal/server/repositories/repomanager"
	"github.com/bpay/bpay/internal/server/rest"
	"github.com/bpay/bpay/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.RepositoryManager
	userService *services.UserService
	httpServer  *rest.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	logger.Info(ctx, "configuration loaded", "config", c.String())

	rm, err := repomanager.New(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("db migration error: %w", err), rm.Close())
	}

	hasher, err := auth.NewSecretHasher(c.HashAlgorithm, c.HashCost)
	if err != nil {
		return nil, errors.Join(err, rm.Close())
	}
	issuer := auth.NewIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration)

	us := services.NewUserService(rm.Users(), hasher, issuer, logger, c.DefaultRole)
	hs := rest.NewHTTPServer(c, logger, us, issuer, rest.NewMetrics())

	return &App{config: c, logger: logger, repos: rm, userService: us, httpServer: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or the
// HTTP server fails. The store is closed before returning.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "store close failed", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
