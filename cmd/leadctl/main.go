package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/domain/admin"
	"portfolio/internal/domain/lead"
	"portfolio/internal/pkg/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "leadctl",
		Short:   "Inspect stored portfolio leads",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup("dev", "warn")
		},
	}

	rootCmd.PersistentFlags().String("database-url", "", "Override DATABASE_URL")

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(countCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(hashCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openService connects to the configured database and migrates the schema.
func openService(cmd *cobra.Command) (*lead.Service, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	dsn := cfg.DatabaseURL
	if v, _ := cmd.Flags().GetString("database-url"); v != "" {
		dsn = v
	}

	db, err := database.Connect(dsn, database.Options{Silent: true})
	if err != nil {
		return nil, nil, err
	}

	repo := lead.NewRepository(db)
	if err := repo.Migrate(cmd.Context()); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	return lead.NewService(repo, nil), db, nil
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			asJSON, _ := cmd.Flags().GetBool("json")

			svc, db, err := openService(cmd)
			if err != nil {
				return err
			}
			defer database.Close(db)

			res, err := svc.ListLeads(ctx(cmd), limit, offset)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, res)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tSTEPS\tCREATED")
			for _, l := range res.Leads {
				email, _ := l.Answers["email"].(string)
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", l.ID, email, l.StepCount, l.CreatedAt.Format(time.RFC3339))
			}
			fmt.Fprintf(w, "\n%d of %d\n", len(res.Leads), res.Total)
			return w.Flush()
		},
	}

	cmd.Flags().IntP("limit", "n", 50, "Maximum leads to show")
	cmd.Flags().Int("offset", 0, "Leads to skip")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}

func countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, err := openService(cmd)
			if err != nil {
				return err
			}
			defer database.Close(db)

			res, err := svc.ListLeads(ctx(cmd), 1, 0)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Total)
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print the summary of one lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid lead id %q", args[0])
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			svc, db, err := openService(cmd)
			if err != nil {
				return err
			}
			defer database.Close(db)

			view, err := svc.GetByID(ctx(cmd), id)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, view)
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.Summary)
			return nil
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	return cmd
}

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "admin-hash [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := admin.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func ctx(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
