package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-portal/identity"
	"github.com/jrsteele09/go-auth-portal/internal/config"
	"github.com/jrsteele09/go-auth-portal/internal/telemetry"
	"github.com/jrsteele09/go-auth-portal/registration"
	"github.com/jrsteele09/go-auth-portal/server"
	"github.com/jrsteele09/go-auth-portal/session"
	"github.com/jrsteele09/go-auth-portal/session/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sessionCleanupInterval = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	setupLogging(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, c)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	repo, storeCloser, err := openSessionRepo(ctx, c)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: c.GetUpstreamTimeout()}
	sessions := session.NewManager(repo, identity.NewClient(c, httpClient), c.GetSessionMaxAge())
	go sessions.RunJanitor(ctx, sessionCleanupInterval)

	handler, err := server.New(c, server.Dependencies{
		Sessions:  sessions,
		Validator: registration.NewValidator(c.GetRegistrationBackendURL(), httpClient),
		Committer: registration.NewCommitter(c.GetCentralServerURL(), httpClient),
	})
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	displayAppname(c.GetAppName())
	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		returnError = err
	case <-waitForStopSignal():
		returnError = shutdown(srv)
	}

	cancel()
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Warn().Err(err).Msg("tracer shutdown failed")
	}
	if err := storeCloser.Close(); err != nil {
		log.Warn().Err(err).Msg("session store close failed")
	}
	return returnError
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("app", c.GetAppName()).Logger()
	}
	zerolog.DefaultContextLogger = &log.Logger
}

// openSessionRepo picks the session store named by SESSION_STORE.
func openSessionRepo(ctx context.Context, c config.Config) (session.Repo, io.Closer, error) {
	switch c.GetSessionStore() {
	case config.SessionStoreSQLite:
		store, err := sqlite.Open(ctx, c.GetSessionDBPath())
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		log.Info().Str("path", c.GetSessionDBPath()).Msg("using sqlite session store")
		return store, store, nil
	default:
		return session.NewInMemoryRepo(), io.NopCloser(nil), nil
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
