package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kurihiro0119/community-console/internal/config"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
	"github.com/kurihiro0119/community-console/internal/logger"
	"github.com/kurihiro0119/community-console/internal/storage"
	"github.com/kurihiro0119/community-console/internal/storage/postgres"
	"github.com/kurihiro0119/community-console/internal/storage/sqlite"
	"github.com/kurihiro0119/community-console/pkg/client"
)

var (
	cfgFile    string
	outputJSON bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "community-console",
	Short: "Community platform admin and investor console",
	Long: `A CLI tool for administrators and investors of the community platform.

Admins create communities and edit their member, reward and advertisement
shares. Investors price and submit one advertisement per selected community
and follow each submission as it runs. Every submission run is kept locally.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(communityCmd)
	rootCmd.AddCommand(adsCmd)
	rootCmd.AddCommand(batchesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if apperrors.IsRemote(err) {
			fmt.Fprintf(os.Stderr, "Backend rejected the request: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}

// getClient builds a backend client for a session holding role
func getClient(cfg *config.Config, log *slog.Logger, role string) (*client.Client, error) {
	if err := cfg.ValidateBackend(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	session := &client.Session{AccessToken: cfg.AccessToken, Role: cfg.UserRole}
	if err := session.Require(role); err != nil {
		return nil, err
	}
	return client.NewClient(client.Options{
		CommonURL: cfg.CommonAPIURL,
		Timeout:   cfg.HTTPTimeout,
		Logger:    log,
	}, session), nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Verbose)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
