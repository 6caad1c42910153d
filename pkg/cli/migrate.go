package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TechXTT/litebridge/pkg/runtime"
)

func NewMigrateCmd(opts *globalOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, cfg, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if dir == "" {
				dir = cfg.Migrations
			}
			mgr, err := runtime.NewManager(db, dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch args[0] {
			case "up":
				n, err := mgr.Up(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Applied %d migration(s)\n", n)
			case "down":
				rolled, err := mgr.Down(ctx)
				if err != nil {
					return err
				}
				if !rolled {
					fmt.Fprintln(out, "No migrations to roll back.")
					return nil
				}
				fmt.Fprintln(out, "Rolled back 1 migration")
			case "status":
				status, err := mgr.Status(ctx)
				if err != nil {
					return err
				}
				for _, s := range status {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Fprintf(out, "%04d_%s: %s\n", s.Version, s.Name, state)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Migrations directory (default from config)")
	return cmd
}
