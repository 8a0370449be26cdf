package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/internal/procurement"
	"github.com/reoring/reqshape/shapefile"
)

// app carries the state shared by every subcommand once the root command
// has loaded configuration.
type app struct {
	configPath string
	shapesFile string

	cfg    *Config
	logger *slog.Logger
	reg    *reqshape.Registry
}

// newRootCmd creates a fresh command tree.
func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "reqshape",
		Short:         "Validate and normalize JSON request bodies against declared shapes",
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file")
	cmd.PersistentFlags().StringVar(&a.shapesFile, "shapes", "", "YAML shape file registered next to the built-in shapes")

	cmd.AddCommand(
		newValidateCmd(a),
		newShapesCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newImportCRDCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return &cliError{Op: "load config", Code: ExitConfigError, Err: err}
	}
	if a.shapesFile != "" {
		cfg.Shapes.File = a.shapesFile
	}
	a.cfg = cfg
	a.logger = SetupLogger(cfg, cmd.ErrOrStderr())

	reg, err := procurement.NewRegistry()
	if err != nil {
		return &cliError{Op: "register shapes", Code: ExitSchemaError, Err: err}
	}
	if cfg.Shapes.File != "" {
		f, err := os.Open(cfg.Shapes.File)
		if err != nil {
			return &cliError{Op: "open shape file", Code: ExitConfigError, Err: err}
		}
		defer f.Close()
		if err := shapefile.Register(reg, f); err != nil {
			return &cliError{Op: "register " + cfg.Shapes.File, Code: ExitSchemaError, Err: err}
		}
	}
	a.reg = reg
	return nil
}

func (a *app) validator() *reqshape.Validator {
	return reqshape.NewValidator(a.reg, a.cfg.Validator(a.logger))
}

// newShapesCmd lists the registered shape names.
func newShapesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shapes",
		Short: "List registered shapes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range a.reg.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
