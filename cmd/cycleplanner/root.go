package main

import (
	"fmt"
	"log/slog"
	"strings"

	"cycleplanner/internal/config"
	"cycleplanner/internal/logging"
	"cycleplanner/internal/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// options are the persistent flags, overlaid with CYCLEPLANNER_* variables.
type options struct {
	v *viper.Viper
}

// env is what a command needs to touch the data directory.
type env struct {
	cfg   *config.Config
	log   *logging.Logger
	store *storage.Storage
}

func (e *env) Close() error {
	return e.log.Close()
}

func newRootCmd() *cobra.Command {
	o := &options{v: viper.New()}
	o.v.SetEnvPrefix("CYCLEPLANNER")
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "cycleplanner",
		Short: "Plan goals, works and tasks in cycles kept in plain folders.",
		Long: `cycleplanner keeps an index of planning cycles. Each cycle lives in its own
folder as cycle_data.json; the index records where every folder is and
which cycle is selected. Without a command the terminal UI starts.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.runUI(cmd)
		},
	}
	cmd.SetVersionTemplate("cycleplanner version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default "+config.Path()+")")
	flags.String("data-dir", "", "directory holding index.json")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	for _, name := range []string{"config", "data-dir", "log-level"} {
		_ = o.v.BindPFlag(name, flags.Lookup(name))
	}

	cmd.AddCommand(
		o.newIndexCmd(),
		o.newSelectCmd(),
		o.newCreateCmd(),
		o.newImportCmd(),
		o.newShowCmd(),
		o.newSaveCmd(),
		newPickCmd(),
		o.newBackupCmd(),
		o.newRestoreCmd(),
		o.newUICmd(),
		o.newConfigCmd(),
	)
	return cmd
}

// configPath is the config file in effect.
func (o *options) configPath() string {
	if p := o.v.GetString("config"); p != "" {
		return p
	}
	return config.Path()
}

// loadConfig reads the config file and applies flag and env overrides.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(o.configPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dir := o.v.GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	if level := o.v.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

// open loads the config and opens the log file and the storage.
func (o *options) open() (*env, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogFile(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(cfg.GetDataDir(), storage.WithBackups(cfg.Storage.KeepBackups))
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	storeLog := logging.WithComponent(logger.Logger, "storage")
	store.SetOnSave(func(ev storage.SaveEvent) {
		storeLog.Info("saved",
			slog.String("file", ev.File),
			slog.String("op", ev.Operation),
			slog.String("cycle", ev.CycleID),
		)
	})

	return &env{cfg: cfg, log: logger, store: store}, nil
}

// withEnv runs fn with an opened env and logs a failure before returning it.
func (o *options) withEnv(cmd *cobra.Command, fn func(*env) error) error {
	e, err := o.open()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := fn(e); err != nil {
		e.log.Error("command failed", slog.String("command", cmd.CommandPath()), slog.Any("err", err))
		return err
	}
	return nil
}
