package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cycleplanner/internal/pathutil"
	"cycleplanner/internal/picker"
	"cycleplanner/internal/storage"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func (o *options) newIndexCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "index",
		Short: "List the cycles in the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withEnv(cmd, func(e *env) error {
				idx, err := e.store.LoadIndex()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), idx)
				}
				printIndex(cmd.OutOrStdout(), idx)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the index as JSON")
	return cmd
}

// printIndex writes the cycles as a table; the selected one is starred.
func printIndex(w io.Writer, idx *storage.IndexData) {
	if len(idx.Cycles) == 0 {
		fmt.Fprintln(w, "No cycles yet.")
		fmt.Fprintln(w, "Run 'cycleplanner create NAME' to add one.")
		return
	}

	header := color.New(color.Bold)
	star := color.New(color.FgGreen, color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", header.Sprint("ID"), header.Sprint("NAME"), header.Sprint("CREATED"), header.Sprint("FOLDER"))
	for _, c := range idx.Cycles {
		mark := " "
		if c.ID == idx.Selected() {
			mark = star.Sprint("*")
		}
		tbl.AddRow(mark, c.ID, c.Name, faint.Sprint(c.CreatedAt), pathutil.Display(c.FolderPath))
	}
	fmt.Fprintln(w, tbl)
}

func (o *options) newSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select ID",
		Short: "Select a cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withEnv(cmd, func(e *env) error {
				idx, err := e.store.SelectCycle(args[0])
				if err != nil {
					return err
				}
				meta, _ := idx.Find(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Selected %s (%s)\n", meta.Name, meta.ID)
				return nil
			})
		},
	}
}

func (o *options) newCreateCmd() *cobra.Command {
	var parent string
	var pick bool
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a cycle in a new folder",
		Long: `Create a cycle named NAME in a new folder under --parent (default: the
current directory). With --pick the parent is chosen interactively.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pick && parent != "" {
				return errors.New("--parent and --pick are mutually exclusive")
			}
			return o.withEnv(cmd, func(e *env) error {
				dir := parent
				if pick {
					picked, err := picker.PickFolder(currentDir())
					if err != nil {
						return err
					}
					if picked == "" {
						fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
						return nil
					}
					dir = picked
				}
				if dir == "" {
					dir = currentDir()
				}

				idx, err := e.store.CreateCycle(args[0], dir)
				if err != nil {
					return err
				}
				meta := idx.Cycles[len(idx.Cycles)-1]
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s (%s)\n", meta.Name, meta.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "  Folder: %s\n", meta.FolderPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "directory to create the cycle folder in")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the parent directory interactively")
	return cmd
}

func (o *options) newImportCmd() *cobra.Command {
	var pick bool
	cmd := &cobra.Command{
		Use:   "import [DIR]",
		Short: "Add an existing cycle folder to the index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pick == (len(args) == 1) {
				return errors.New("give either DIR or --pick")
			}
			return o.withEnv(cmd, func(e *env) error {
				var dir string
				if pick {
					picked, err := picker.PickFolder(currentDir())
					if err != nil {
						return err
					}
					if picked == "" {
						fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
						return nil
					}
					dir = picked
				} else {
					dir = args[0]
				}

				idx, err := e.store.ImportCycle(dir)
				if err != nil {
					return err
				}
				meta, _ := idx.Find(idx.Selected())
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %s (%s)\n", meta.Name, meta.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "  Folder: %s\n", meta.FolderPath)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the folder interactively")
	return cmd
}

func (o *options) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [ID]",
		Short: "Print a cycle's content as JSON (default: the selected cycle)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withEnv(cmd, func(e *env) error {
				id, err := cycleArg(e.store, args)
				if err != nil {
					return err
				}
				data, err := e.store.LoadCycleData(id)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), data)
			})
		},
	}
}

func (o *options) newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save ID [FILE|-]",
		Short: "Replace a cycle's content with JSON from FILE or stdin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if len(args) == 1 || args[1] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[1])
			}
			if err != nil {
				return fmt.Errorf("read cycle data: %w", err)
			}

			data, err := storage.DecodeCycleData(raw)
			if err != nil {
				return err
			}

			return o.withEnv(cmd, func(e *env) error {
				if err := e.store.SaveCycleData(args[0], *data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s (goals: %d, works: %d, tasks: %d)\n",
					args[0], len(data.Goals), len(data.Works), len(data.Tasks))
				return nil
			})
		},
	}
}

func newPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick [START]",
		Short: "Choose a folder interactively and print its path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := currentDir()
			if len(args) == 1 {
				start = args[0]
			}
			picked, err := picker.PickFolder(start)
			if err != nil {
				return err
			}
			if picked != "" {
				fmt.Fprintln(cmd.OutOrStdout(), picked)
			}
			return nil
		},
	}
}

// cycleArg returns the id in args, or the selected cycle's id.
func cycleArg(store *storage.Storage, args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	meta, err := store.SelectedCycle()
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func currentDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
