package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/chhz0/tasklist/tui"
)

var errUsage = errors.New("usage error")

type globalOptions struct {
	configPath string
	backend    string
	dataDir    string
	verbose    bool
}

// overrides 只包含显式给出的参数
func (o *globalOptions) overrides() map[string]any {
	m := map[string]any{}
	if o.backend != "" {
		m["backend"] = o.backend
	}
	if o.dataDir != "" {
		m["data_dir"] = o.dataDir
	}
	return m
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "tasklist",
		Short:         "Manage a persistent list of tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, opts)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/tasklist/config.yaml)")
	pf.StringVar(&opts.backend, "backend", "", "storage backend: bolt, sqlite, mysql, redis or memory")
	pf.StringVar(&opts.dataDir, "data-dir", "", "directory for local databases and logs")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newUICmd(opts),
		newAddCmd(opts),
		newListCmd(opts),
		newEditCmd(opts),
		newRemoveCmd(opts),
		newClearCmd(opts),
		newExportCmd(opts),
		newConfigCmd(),
	)
	return root
}

func newUICmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, opts)
		},
	}
}

func runUI(cmd *cobra.Command, opts *globalOptions) error {
	a, err := openApp(cmd.Context(), opts, true)
	if err != nil {
		return err
	}
	defer a.Close()
	return tui.Run(cmd.Context(), a.store, a.load)
}
