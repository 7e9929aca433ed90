// Command civicseed fills a CivicTrack database with mock constituencies,
// panchayats, wards, users, issues and upvotes.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dalemusser/civictrack/internal/app/seed"
	"github.com/dalemusser/civictrack/internal/app/system/txn"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		uri      string
		database string
		verbose  bool
		timeout  time.Duration
		opts     seed.Options
	)

	cmd := &cobra.Command{
		Use:   "civicseed",
		Short: "Seed a CivicTrack database with mock data",
		Long: `civicseed creates an admin, one MLA per constituency, citizens, the
constituency/panchayat/ward hierarchy and a spread of issues with upvotes.
Every account uses the password ` + seed.Password + `.

Existing constituencies are skipped; use --drop to start from an empty database.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wafflemongo.ValidateURI(uri); err != nil {
				return err
			}
			logger := zap.NewNop()
			if verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = l
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
			if err != nil {
				return fmt.Errorf("connect mongo: %w", err)
			}
			defer func() { _ = client.Disconnect(context.Background()) }()
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				return fmt.Errorf("ping mongo: %w", err)
			}

			sum, err := seed.Run(ctx, client.Database(database), txn.New(client, logger), opts, logger)
			if err != nil {
				return err
			}
			printSummary(cmd, database, sum)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&uri, "mongo-uri", envOr("CIVICTRACK_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection string")
	f.StringVar(&database, "database", envOr("CIVICTRACK_MONGO_DATABASE", "civictrack"), "database name")
	f.IntVar(&opts.Constituencies, "constituencies", 3, "number of constituencies")
	f.IntVar(&opts.Panchayats, "panchayats", 4, "panchayats per constituency")
	f.IntVar(&opts.Wards, "wards", 3, "wards per panchayat")
	f.IntVar(&opts.Issues, "issues", 40, "number of issues")
	f.IntVar(&opts.Citizens, "citizens", 0, "number of citizens (0 derives from --issues)")
	f.Int64Var(&opts.Seed, "seed", 1, "random seed")
	f.BoolVar(&opts.Drop, "drop", false, "drop the database before seeding")
	f.BoolVarP(&verbose, "verbose", "v", false, "log progress")
	f.DurationVar(&timeout, "timeout", 5*time.Minute, "overall deadline")
	return cmd
}

func printSummary(cmd *cobra.Command, database string, s seed.Summary) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Fprintf(out, "%s %s\n", green("✓"), bold("seeded "+database))
	rows := []struct {
		label string
		n     int
	}{
		{"admins", s.Admins},
		{"MLAs", s.MLAs},
		{"citizens", s.Citizens},
		{"constituencies", s.Constituencies},
		{"panchayats", s.Panchayats},
		{"wards", s.Wards},
		{"issues", s.Issues},
		{"upvotes", s.Upvotes},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "  %-15s %s\n", r.label, green(r.n))
	}
	if len(s.Skipped) > 0 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(out, "%s skipped %d existing item(s):\n", yellow("!"), len(s.Skipped))
		for _, item := range s.Skipped {
			fmt.Fprintf(out, "  %s\n", item)
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
