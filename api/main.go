package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"

	social "github.com/jimiolaniyan/gosocial"
	"github.com/jimiolaniyan/gosocial/auth"
	"github.com/jimiolaniyan/gosocial/config"
	"github.com/jimiolaniyan/gosocial/metrics"
	"github.com/jimiolaniyan/gosocial/middleware"
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s stores: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := repos.close(); err != nil {
			log.WithError(err).Error("failed to close stores")
		}
	}()

	var opts []social.Option
	if !cfg.StrictAccountMessages {
		opts = append(opts, social.LenientAccountMessages())
	}
	accSvc := auth.NewService(repos.accounts)
	msgSvc := social.NewService(repos.messages, repos.accounts, opts...)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newHandler(accSvc, msgSvc, cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.WithFields(log.Fields{
		"port":   cfg.Port,
		"env":    cfg.Env,
		"driver": cfg.StoreDriver,
	}).Info("server started")
	return serve(ctx, srv, cfg.ShutdownTimeout)
}

// serve runs srv until ctx is done or the listener fails. On ctx it drains
// in-flight requests for at most shutdownTimeout.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errs := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func setupLogging(cfg config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func newRouter(accSvc auth.Service, msgSvc social.Service) *httprouter.Router {
	router := httprouter.New()
	route := func(method, path string, h http.Handler) {
		router.Handler(method, path, metrics.Instrument(path, h))
	}

	route(http.MethodPost, "/register", auth.RegisterAccountHandler(accSvc))
	route(http.MethodPost, "/login", auth.LoginHandler(accSvc))
	route(http.MethodPost, "/messages", social.CreateMessageHandler(msgSvc))
	route(http.MethodGet, "/messages", social.GetMessagesHandler(msgSvc))
	route(http.MethodGet, "/messages/:messageId", social.GetMessageHandler(msgSvc))
	route(http.MethodDelete, "/messages/:messageId", social.DeleteMessageHandler(msgSvc))
	route(http.MethodPatch, "/messages/:messageId", social.UpdateMessageHandler(msgSvc))
	route(http.MethodGet, "/accounts/:accountId/messages", social.GetAccountMessagesHandler(msgSvc))
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())
	return router
}

func newHandler(accSvc auth.Service, msgSvc social.Service, allowedOrigins []string) http.Handler {
	return middleware.Chain(newRouter(accSvc, msgSvc),
		middleware.RequestID,
		middleware.Logging,
		middleware.Recover,
		middleware.CORS(allowedOrigins),
	)
}
