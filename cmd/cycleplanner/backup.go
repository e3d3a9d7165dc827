package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cycleplanner/internal/backup"
	"cycleplanner/internal/logging"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func (o *options) newBackupCmd() *cobra.Command {
	var list bool
	var prune int
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the index and every cycle",
		Long: `Create a timestamped backup of index.json and each cycle's
cycle_data.json under <data dir>/backups. Older backups beyond backup.keep
are pruned after a new one is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withEnv(cmd, func(e *env) error {
				manager := backup.NewManager(e.store, version)
				log := logging.WithComponent(e.log.Logger, "backup")
				out := cmd.OutOrStdout()

				switch {
				case list:
					return listBackups(out, manager)
				case cmd.Flags().Changed("prune"):
					removed, err := manager.Prune(prune)
					if err != nil {
						return err
					}
					log.Info("pruned", slog.Int("removed", removed), slog.Int("keep", prune))
					fmt.Fprintf(out, "✓ Removed %d backup(s)\n", removed)
					return nil
				}

				name, err := manager.Create()
				if err != nil {
					return err
				}
				log.Info("created", slog.String("backup", name))

				info, err := manager.GetBackup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Backup created: %s\n", name)
				fmt.Fprintf(out, "  Cycles: %d, Goals: %d, Works: %d, Tasks: %d\n",
					info.Stats["cycles"], info.Stats["goals"], info.Stats["works"], info.Stats["tasks"])
				fmt.Fprintf(out, "  Location: %s\n", info.Path)

				if keep := e.cfg.Backup.Keep; keep > 0 {
					if removed, err := manager.Prune(keep); err != nil {
						log.Warn("prune failed", slog.Any("err", err))
					} else if removed > 0 {
						log.Info("pruned", slog.Int("removed", removed), slog.Int("keep", keep))
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list available backups")
	cmd.Flags().IntVar(&prune, "prune", 0, "delete all but the N newest backups")
	return cmd
}

// listBackups prints the backups, newest first.
func listBackups(w io.Writer, manager *backup.Manager) error {
	backups, err := manager.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Fprintln(w, "No backups available.")
		fmt.Fprintln(w, "Run 'cycleplanner backup' to create one.")
		return nil
	}

	header := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(header.Sprint("NAME"), header.Sprint("AGE"), header.Sprint("CYCLES"), header.Sprint("GOALS"), header.Sprint("WORKS"), header.Sprint("TASKS"))
	for _, b := range backups {
		tbl.AddRow(b.Name, formatAge(b.CreatedAt), b.Stats["cycles"], b.Stats["goals"], b.Stats["works"], b.Stats["tasks"])
	}
	fmt.Fprintln(w, tbl)
	return nil
}

func (o *options) newRestoreCmd() *cobra.Command {
	var latest, force bool
	cmd := &cobra.Command{
		Use:   "restore NAME",
		Short: "Restore the index and cycles from a backup",
		Long: `Restore index.json and every cycle file recorded in a backup. A safety
backup of the current data is taken first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if latest == (len(args) == 1) {
				return errors.New("give either a backup NAME or --latest")
			}
			return o.withEnv(cmd, func(e *env) error {
				manager := backup.NewManager(e.store, version)
				out := cmd.OutOrStdout()

				name := ""
				if latest {
					backups, err := manager.List()
					if err != nil {
						return err
					}
					if len(backups) == 0 {
						return backup.ErrNoBackups
					}
					name = backups[0].Name
				} else {
					name = args[0]
				}

				info, err := manager.GetBackup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Restoring from backup: %s\n", info.Name)
				fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "  Cycles: %d, Goals: %d, Works: %d, Tasks: %d\n",
					info.Stats["cycles"], info.Stats["goals"], info.Stats["works"], info.Stats["tasks"])
				fmt.Fprintln(out)

				if !force {
					ok, err := confirm(cmd.InOrStdin(), out, "⚠ This will overwrite your current data.\nContinue? [y/N] ")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Restore cancelled.")
						return nil
					}
				}

				fmt.Fprintln(out, "✓ Creating safety backup first...")
				if err := manager.Restore(name); err != nil {
					return err
				}
				logging.WithComponent(e.log.Logger, "backup").Info("restored", slog.String("backup", name))
				fmt.Fprintf(out, "✓ Restored successfully from %s\n", name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "restore from the most recent backup")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// formatAge returns a human-readable age string.
func formatAge(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return plural(int(d.Hours()/24/7), "week")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
