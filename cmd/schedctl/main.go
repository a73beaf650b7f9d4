package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/scheduling-api/internal/config"
	"github.com/jwalitptl/scheduling-api/internal/repository/postgres"
	appointmentService "github.com/jwalitptl/scheduling-api/internal/service/appointment"
	"github.com/jwalitptl/scheduling-api/internal/service/availability"
	clinicService "github.com/jwalitptl/scheduling-api/internal/service/clinic"
	"github.com/jwalitptl/scheduling-api/internal/service/event"
	"github.com/jwalitptl/scheduling-api/pkg/clock"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
	"github.com/jwalitptl/scheduling-api/pkg/security"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "schedctl",
		Short:        "Operate the scheduling API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringSlice("config-path", nil, "directories searched for config.yml")

	root.AddCommand(migrateCmd())
	root.AddCommand(hashTokenCmd())
	root.AddCommand(purgeCancelledCmd())
	root.AddCommand(slotsCmd())
	return root
}

func openDB(cmd *cobra.Command) (*config.Config, *sqlx.DB, error) {
	paths, _ := cmd.Flags().GetStringSlice("config-path")
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		return nil, nil, err
	}
	db, err := postgres.NewDB(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			count, err := postgres.NewMigrator(db).Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they ran",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			statuses, err := postgres.NewMigrator(db).Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.AppliedAt != nil {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%03d  %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	})
	return cmd
}

func hashTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-token <token>",
		Short: "Print the bcrypt hash to configure as auth.integration_token_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, _ := cmd.Flags().GetInt("cost")
			hash, err := security.NewBcryptHasher(cost).Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().Int("cost", 0, "bcrypt cost (default cost when 0)")
	return cmd
}

func purgeCancelledCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge-cancelled",
		Short: "Delete cancelled appointments older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			retention, _ := cmd.Flags().GetDuration("retention")
			if retention <= 0 {
				retention = cfg.Scheduling.CancelledRetention
			}

			svc, err := appointments(cfg, db)
			if err != nil {
				return err
			}
			n, err := svc.PurgeCancelled(cmd.Context(), retention)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cancelled appointment(s) older than %s\n", n, retention)
			return nil
		},
	}
	cmd.Flags().Duration("retention", 0, "override scheduling.cancelled_retention")
	return cmd
}

func appointments(cfg *config.Config, db *sqlx.DB) (*appointmentService.Service, error) {
	zone, err := time.LoadLocation(cfg.Scheduling.DefaultTimezone)
	if err != nil {
		return nil, err
	}
	log := logger.Nop()
	m := metrics.NewNop()
	clk := clock.New()

	clinics := clinicService.NewService(postgres.NewClinicRepository(db), zone, cfg.Scheduling.ClinicCacheTTL)
	professionals := postgres.NewProfessionalRepository(db)
	repo := postgres.NewAppointmentRepository(db)
	avail := availability.NewService(clinics, professionals, repo, clk, m, log)
	return appointmentService.NewService(clinics, postgres.NewClientRepository(db), professionals, repo,
		avail, event.Nop{}, clk, m, log), nil
}

func slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the 30-minute grid for a working window",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			values := availability.GenerateSlots(from, to)
			if len(values) == 0 {
				return fmt.Errorf("no slots between %q and %q", from, to)
			}
			for _, v := range values {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", availability.Label(v), v)
			}
			return nil
		},
	}
	cmd.Flags().String("from", "08:00:00", "window start, HH:mm:ss")
	cmd.Flags().String("to", "18:00:00", "window end, HH:mm:ss")
	return cmd
}
