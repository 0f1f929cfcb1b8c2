// Command mockapi serves the in-memory catalog backend for local development.
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

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/apitest"
	"github.com/branchd-dev/storefront/internal/logger"
	"github.com/branchd-dev/storefront/internal/models"
)

func main() {
	var (
		addr          string
		adminEmail    string
		adminPassword string
		logLevel      string
	)

	cmd := &cobra.Command{
		Use:           "mockapi",
		Short:         "Serve an in-memory catalog backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(logLevel, "console")
			log := logger.GetLogger()

			backend := apitest.NewServer(apitest.WithLogger(log), apitest.WithTokenTTL(24*time.Hour))
			if _, err := backend.AddUser(models.User{Name: "Admin", Lastname: "User", Email: adminEmail, Role: models.RoleAdmin}, adminPassword); err != nil {
				return fmt.Errorf("failed to seed admin: %w", err)
			}
			seedCatalog(backend)

			srv := &http.Server{
				Addr:              addr,
				Handler:           backend.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Str("admin", adminEmail).Str("code", apitest.DefaultCode).Msg("Starting mock catalog backend")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-cmd.Context().Done():
			}

			log.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:5000", "Listen address")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "admin@example.com", "Email of the seeded admin")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "admin123", "Password of the seeded admin")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func seedCatalog(backend *apitest.Server) {
	acme := backend.SeedBrand("Acme")
	globex := backend.SeedBrand("Globex")
	chair := backend.SeedType("Chair")
	desk := backend.SeedType("Desk")

	backend.SeedProduct(models.Product{Name: "Oak Stool", Description: "Solid oak, three legs.", Price: 49.9, BrandID: acme.ID, ProductTypeID: chair.ID, Images: []string{"oak-stool-1.jpg", "oak-stool-2.jpg"}})
	backend.SeedProduct(models.Product{Name: "Office Chair", Description: "Adjustable height.", Price: 129, BrandID: globex.ID, ProductTypeID: chair.ID, Images: []string{"office-chair.jpg"}})
	backend.SeedProduct(models.Product{Name: "Standing Desk", Price: 399, BrandID: globex.ID, ProductTypeID: desk.ID})
}
