package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/db"
	"github.com/monocle-dev/tracker/internal/auth"
	"github.com/monocle-dev/tracker/internal/config"
	"github.com/monocle-dev/tracker/internal/handlers"
	"github.com/monocle-dev/tracker/internal/logging"
	"github.com/monocle-dev/tracker/internal/mail"
	"github.com/monocle-dev/tracker/internal/realtime"
	"github.com/monocle-dev/tracker/internal/router"
	"github.com/monocle-dev/tracker/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		log, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}

		if log.GetLevel() < logrus.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, log)
	},
}

func serve(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	database, err := db.Open(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.MigrateDatabase(database); err != nil {
		return err
	}

	issuer, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	mailer, err := mail.New(ctx, cfg.Mail, log)
	if err != nil {
		return fmt.Errorf("configure mail: %w", err)
	}

	dispatcher := mail.NewDispatcher(mailer, cfg.Mail.Workers, cfg.Mail.QueueSize, log)
	dispatcher.Start()

	h := handlers.New(handlers.Dependencies{
		DB:          database,
		Credentials: services.NewCredentials(database, issuer, log),
		Projects:    services.NewProjects(database, log),
		Membership: services.NewMembership(database, dispatcher, services.MembershipConfig{
			FrontendURL: cfg.FrontendURL,
			From:        cfg.Mail.From,
			ExpiryHours: cfg.Invite.ExpiryHours,
		}, log),
		Tickets:        services.NewTickets(database, log),
		Comments:       services.NewComments(database, log),
		Users:          services.NewUsers(database),
		Dashboards:     services.NewDashboards(database),
		Hub:            realtime.NewHub(log),
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.NewRouter(router.Options{
			Handler:        h,
			Issuer:         issuer,
			Guard:          services.NewGuard(database),
			AllowedOrigins: cfg.AllowedOrigins,
			Log:            log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Drain HTTP first so no handler enqueues mail after the dispatcher stops.
		serverErr := server.Shutdown(shutdownCtx)
		mailErr := dispatcher.Stop(shutdownCtx)

		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}

		return errors.Join(serverErr, mailErr)
	})

	return g.Wait()
}
