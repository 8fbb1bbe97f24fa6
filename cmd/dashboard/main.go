// Package main is the command line client of the marketplace dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"marketDash/internal/config"
	"marketDash/internal/modules/dashboard/application/usecase"
	"marketDash/internal/modules/dashboard/domain"
	"marketDash/internal/modules/dashboard/infrastructure"
	"marketDash/internal/shared/logging"
)

// Global flags.
var (
	forwarderURL  string
	apiKey        string
	resourcesFile string
	timeout       time.Duration
	verbose       bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dashboard",
		Short: "Query marketplace reports through the forwarder",
		Long: `dashboard fetches orders, incomes, sales and stocks through the
forwarder, applies the same filters, sorting and paging as the web
dashboard and prints the result as a table or JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			slog.SetDefault(logging.New(os.Stderr, logging.Config{Level: level, Format: "text"}))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&forwarderURL, "forwarder", envOr("FORWARDER_BASE_URL", "http://localhost:8080"), "Forwarder base URL")
	root.PersistentFlags().StringVar(&apiKey, "key", os.Getenv("FORWARDER_API_KEY"), "API key sent with every request")
	root.PersistentFlags().StringVar(&resourcesFile, "resources", os.Getenv("RESOURCES_FILE"), "YAML file overriding resource definitions")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")

	root.AddCommand(newResourcesCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newFetchAllCmd())
	root.AddCommand(newWatchCmd())

	return root
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// newDashboard builds a dashboard bound to the forwarder selected by the global flags.
func newDashboard() (*usecase.Dashboard, error) {
	resources, err := loadResources()
	if err != nil {
		return nil, err
	}
	fetcher := infrastructure.NewForwarderHTTPClient(forwarderURL, apiKey, timeout)
	return usecase.NewDashboard(resources, fetcher)
}

func loadResources() (map[string]domain.Resource, error) {
	return config.LoadResources(resourcesFile)
}

func main() {
	if err := godotenv.Overload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
