// Command weekly-job runs one settlement directly against the store, for
// cron-style scheduling without going through the HTTP trigger, and mints
// service tokens for schedulers that do use the trigger.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/groupgainz/backend/internal/auth"
	"github.com/groupgainz/backend/internal/messages"
	"github.com/groupgainz/backend/internal/settlement"
	"github.com/groupgainz/backend/internal/storage"
	"github.com/groupgainz/backend/internal/storage/postgres"
	"github.com/groupgainz/backend/internal/storage/sqlite"
	"github.com/groupgainz/backend/pkg/logging"
)

var (
	databaseURL string
	dbPath      string
	threshold   int
	dedupe      bool

	tokenSecret  string
	tokenSubject string
	tokenTTL     time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "weekly-job",
	Short:         "GroupGainz weekly accountability settlement",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one settlement for the current week and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		cfg := settlement.Config{
			PointThreshold:           threshold,
			DeduplicateNotifications: dedupe,
		}
		job := settlement.NewJob(store, messages.NewProvider(), cfg)

		report, runErr := job.Run(cmd.Context(), time.Now())

		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		if runErr != nil {
			return runErr
		}
		if !report.Success {
			// Partial failures: the report is complete, signal via exit code.
			os.Exit(2)
		}
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a service token for the HTTP trigger",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenSecret == "" {
			tokenSecret = os.Getenv("SERVICE_TOKEN_SECRET")
		}
		if tokenSecret == "" {
			return fmt.Errorf("no secret: pass --secret or set SERVICE_TOKEN_SECRET")
		}
		token, err := auth.NewTokenManager(tokenSecret, tokenTTL).Generate(tokenSubject)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func openStore(cmd *cobra.Command) (storage.Store, error) {
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL != "" {
		store, err := postgres.Open(databaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(cmd.Context()); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	}
	return sqlite.New(dbPath)
}

func main() {
	logging.Setup()

	runCmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres DSN (default: DATABASE_URL env, else SQLite)")
	runCmd.Flags().StringVar(&dbPath, "db", "./data/groupgainz.db", "SQLite database path when no Postgres DSN is set")
	runCmd.Flags().IntVar(&threshold, "threshold", settlement.DefaultPointThreshold, "weekly point threshold")
	runCmd.Flags().BoolVar(&dedupe, "dedupe-notifications", false, "suppress duplicate notifications on re-runs")

	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "signing secret (default: SERVICE_TOKEN_SECRET env)")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "weekly-cron", "token subject for audit trails")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(runCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
