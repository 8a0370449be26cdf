package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/reqshape/openapi"
	"github.com/reoring/reqshape/shapefile"
)

func newImportCmd(a *app) *cobra.Command {
	var opt openapi.Options
	cmd := &cobra.Command{
		Use:   "import-openapi FILE",
		Short: "Convert OpenAPI component schemas into a YAML shape file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			shapes, diag, err := openapi.Import(cmd.Context(), data, opt)
			if err != nil {
				return &cliError{Op: "import " + args[0], Code: ExitSchemaError, Err: err}
			}
			for _, w := range diag.Warnings {
				a.logger.WarnContext(cmd.Context(), "openapi import", "file", args[0], "warning", w)
			}
			return shapefile.Dump(cmd.OutOrStdout(), shapes...)
		},
	}
	cmd.Flags().BoolVar(&opt.Validate, "validate", false, "Validate the OpenAPI document before converting")
	cmd.Flags().StringSliceVar(&opt.Only, "only", nil, "Convert only the named component schemas")
	return cmd
}

func newImportCRDCmd(a *app) *cobra.Command {
	var opt openapi.CRDOptions
	cmd := &cobra.Command{
		Use:   "import-crd FILE",
		Short: "Convert a CustomResourceDefinition schema into a YAML shape file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			shapes, diag, err := openapi.ImportCRD(data, opt)
			if err != nil {
				return &cliError{Op: "import " + args[0], Code: ExitSchemaError, Err: err}
			}
			for _, w := range diag.Warnings {
				a.logger.WarnContext(cmd.Context(), "crd import", "file", args[0], "warning", w)
			}
			return shapefile.Dump(cmd.OutOrStdout(), shapes...)
		},
	}
	cmd.Flags().StringVar(&opt.Kind, "kind", "", "spec.names.kind of the CRD (default: first CRD in the file)")
	cmd.Flags().StringVar(&opt.Version, "crd-version", "", "CRD version (default: the storage version)")
	return cmd
}
