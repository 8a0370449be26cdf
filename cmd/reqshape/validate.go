package main

import (
	"errors"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/reqshape"
)

func newValidateCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate SHAPE [FILE]",
		Short: "Validate a JSON document and print the accepted instance or the rejection",
		Long: "validate reads one JSON document from FILE (or stdin), runs it through the\n" +
			"validation pipeline for SHAPE and prints the cleaned instance. A rejected\n" +
			"document prints the aggregated report and exits with status 1.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[1:])
			if err != nil {
				return err
			}
			v := a.validator()
			if strict {
				cfg := v.Config()
				cfg.ForbidNonWhitelisted = true
				v = v.WithConfig(cfg)
			}
			res, err := reqshape.ValidateJSON(cmd.Context(), v, data, reqshape.Ref(args[0]), a.cfg.DecodeOpt())
			if err != nil {
				if errors.Is(err, reqshape.ErrSchemaDefinition) {
					return &cliError{Op: "validate " + args[0], Code: ExitSchemaError, Err: err}
				}
				return err
			}
			if !res.Accepted() {
				rej := reqshape.NewRejection(res.Issues)
				if err := writeJSON(cmd.OutOrStdout(), rej); err != nil {
					return err
				}
				return &rejectedError{Fields: len(rej.Errors)}
			}
			return writeJSON(cmd.OutOrStdout(), res.Value)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Report undeclared fields as violations")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
