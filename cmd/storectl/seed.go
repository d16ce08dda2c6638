package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/seed"
	"github.com/fekuna/omnipos-storefront-service/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	seedEmail    string
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed [file.yaml]",
	Short: "Load warehouses, categories and products through the API",
	Long: `Reads a YAML seed file and creates what is missing. Existing warehouse
codes, category names and product SKUs are skipped, so seeding twice is safe.

Authenticate with --token, or with --email/--password to log in first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := seed.Load(args[0])
		if err != nil {
			return err
		}
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if seedEmail != "" {
			if apiToken, err = seed.Login(cmd.Context(), client, seedEmail, seedPassword); err != nil {
				return fmt.Errorf("login: %w", err)
			}
		}

		res, err := seed.NewSeeder(client, apiclient.NewQueryClient(client, time.Minute), appLogger).Run(cmd.Context(), f)
		if res != nil {
			out, _ := json.MarshalIndent(res, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}
		return err
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "log in as this admin before seeding")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "password for --email")
}
