package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fekuna/omnipos-storefront-service/config"
	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/pkg/apiclient"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	apiURL     string
	apiToken   string
	merchantID string
	verbose    bool

	cfg       *config.Config
	appLogger logger.ZapLogger
)

var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "Operate a storefront deployment",
	Long: `storectl manages the storefront database and talks to a running API.

Database commands (migrate, user) read the same POSTGRES_* environment as the
server. API commands (seed, products, routes) use --api and --token.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg = config.LoadEnv()
		if merchantID == "" {
			merchantID = cfg.Server.DefaultMerchantID
		}

		level := "info"
		if verbose {
			level = "debug"
		}
		appLogger = logger.NewZapLogger(&logger.ZapLoggerConfig{
			IsDevelopment:     true,
			Encoding:          "console",
			Level:             level,
			DisableStacktrace: true,
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger != nil {
			_ = appLogger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("STOREFRONT_API", "http://localhost:8080"), "storefront API base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("STOREFRONT_TOKEN"), "bearer token for API commands")
	rootCmd.PersistentFlags().StringVar(&merchantID, "merchant", "", "merchant id (defaults to DEFAULT_MERCHANT_ID)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(migrateCmd, userCmd, seedCmd, productsCmd, routesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newAPIClient builds a client scoped to the selected merchant. The token is
// read on every request so seed can log in first and fill it in.
func newAPIClient() (*apiclient.Client, error) {
	c, err := apiclient.New(apiURL,
		apiclient.WithTimeout(30*time.Second),
		apiclient.WithHeader(auth.MerchantHeader, merchantID),
		apiclient.WithBearerToken(func() string { return apiToken }),
		apiclient.WithValidation(nil),
	)
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	return c, nil
}
