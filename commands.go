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

	"github.com/Govind-619/CareFund/config"
	"github.com/Govind-619/CareFund/controllers"
	"github.com/Govind-619/CareFund/events"
	"github.com/Govind-619/CareFund/gateway"
	"github.com/Govind-619/CareFund/metrics"
	"github.com/Govind-619/CareFund/notify"
	"github.com/Govind-619/CareFund/repository"
	"github.com/Govind-619/CareFund/routes"
	"github.com/Govind-619/CareFund/services"
	"github.com/Govind-619/CareFund/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if cfg.InMemory() {
				return errors.New("migrate needs a database, ENV is memory")
			}
			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}
			return config.Migrate(db, cfg.MigrationsPath)
		},
	}
}

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "List transactions released before delivery",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			violations, err := store.FindReleaseViolations(cmd.Context())
			if err != nil {
				return err
			}
			if len(violations) == 0 {
				fmt.Println("No release violations found")
				return nil
			}
			for _, t := range violations {
				fmt.Printf("transaction=%s donation=%s status=%s amount=%.2f\n", t.ID, t.DonationID, t.Status, t.Amount)
			}
			return fmt.Errorf("%d transactions completed before delivery", len(violations))
		},
	}
}

func tokenCmd() *cobra.Command {
	var userID, email, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			token, err := utils.GenerateToken(cfg.JWTSecret, userID, email, role)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (uuid)")
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&role, "role", utils.RoleDonor, "donor, vendor or admin")
	cobra.CheckErr(cmd.MarkFlagRequired("user"))
	return cmd
}

func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.InMemory() {
		utils.LogInfo("Using in-memory store")
		return repository.NewMemoryStore(), nil
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(db, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}

func runServe(ctx context.Context) error {
	cfg := loadConfig()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	gw, err := gateway.NewRazorpayGateway(cfg.Gateway.KeyID, cfg.Gateway.KeySecret, cfg.Gateway.Timeout)
	if err != nil {
		return &config.ConfigurationError{Err: err}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		utils.LogInfo("Publishing escrow events to %s on %v", cfg.Kafka.Topic, cfg.Kafka.Brokers)
	}
	defer publisher.Close()

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.MailEnabled() {
		notifier = notify.NewMailNotifier(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	svc, err := services.NewEscrowService(store, gw, services.NewSignatureVerifier(cfg.Gateway.KeySecret), services.Options{
		Publisher: publisher,
		Notifier:  notifier,
		Metrics:   metrics.NewEscrowMetrics(prometheus.DefaultRegisterer),
		Currency:  cfg.Gateway.Currency,
	})
	if err != nil {
		return err
	}

	router := routes.SetupRouter(controllers.NewController(svc, cfg.Gateway.KeyID), cfg.JWTSecret, prometheus.DefaultGatherer)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		utils.LogInfo("Server starting on port %s", cfg.Port)
		fmt.Printf("CareFund listening on :%s\n", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	utils.LogInfo("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
