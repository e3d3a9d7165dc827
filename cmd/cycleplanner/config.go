package main

import (
	"errors"
	"fmt"
	"os"

	"cycleplanner/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (o *options) newConfigCmd() *cobra.Command {
	var initFile bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, flags and
CYCLEPLANNER_* environment variables are applied. With --init a config
file holding the defaults is written if none exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := o.configPath()
			out := cmd.OutOrStdout()

			if initFile {
				if path == "" {
					return errors.New("no config directory is known")
				}
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file already exists: %s", path)
				}
				if err := config.Default().Save(path); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				fmt.Fprintf(out, "✓ Wrote %s\n", path)
				return nil
			}

			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "# %s\n", path)
			fmt.Fprintf(out, "# data dir: %s\n", cfg.GetDataDir())
			fmt.Fprintf(out, "# log file: %s\n", cfg.LogFile())
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "write a default config file")
	return cmd
}
