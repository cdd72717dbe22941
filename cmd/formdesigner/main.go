// Command formdesigner serves the form designer and works with design
// documents from the terminal.
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdesigner/internal/config"
	"github.com/goliatone/go-formdesigner/internal/logging"
	"github.com/goliatone/go-formdesigner/pkg/elements"
	"github.com/goliatone/go-formdesigner/pkg/elements/builtin"
	"github.com/goliatone/go-formdesigner/pkg/renderers/tui"
)

// app is the state shared by the subcommands. PersistentPreRunE fills cfg
// and logger before any command runs.
type app struct {
	stdout   io.Writer
	elements *elements.Registry
	// driver answers fill prompts; nil uses the terminal.
	driver tui.PromptDriver

	configFile string
	cfg        config.Config
	logger     *zap.Logger
}

func newApp() *app {
	return &app{
		stdout:   os.Stdout,
		elements: builtin.Registry(),
		logger:   zap.NewNop(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "formdesigner",
		Short: "Design forms in the browser and export them",
		Long: `formdesigner serves a drag and drop form designer and works with saved
design documents (YAML, JSON, JSONC or TOML).

Configuration is read from formdesigner.{yaml,toml,json} in the working
directory or --config, then FORMDESIGNER_* environment variables, then flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{File: a.configFile, Flags: cmd.Flags()})
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(a.stdout)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default formdesigner.{yaml,toml,json} when present)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, console)")

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newExportCmd(a),
		newFillCmd(a),
		newTypesCmd(a),
		newCheckCmd(a),
		newHashTokenCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}
