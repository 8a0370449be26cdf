package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/jsonschema"
	"github.com/reoring/reqshape/openapi"
	"github.com/reoring/reqshape/shapefile"
)

// Export formats.
const (
	formatJSONSchema = "jsonschema"
	formatYAML       = "yaml"
	formatOpenAPI    = "openapi"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		strict bool
		title  string
	)
	cmd := &cobra.Command{
		Use:   "export [SHAPE...]",
		Short: "Print shape declarations as JSON Schema, a YAML shape file or an OpenAPI document",
		Long: "export prints registered shapes in another format.\n\n" +
			"  jsonschema  one Draft 2020-12 document for a single SHAPE\n" +
			"  yaml        a shape file holding SHAPE... (all shapes when none are named)\n" +
			"  openapi     an OpenAPI 3 document with every shape under components.schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch format {
			case formatJSONSchema:
				if len(args) != 1 {
					return fmt.Errorf("jsonschema export needs exactly one shape, got %d", len(args))
				}
				doc, err := jsonschema.FromShape(a.reg, args[0], jsonschema.Options{
					Strict: strict || a.cfg.Validation.ForbidNonWhitelisted,
				})
				if err != nil {
					return &cliError{Op: "export " + args[0], Code: ExitSchemaError, Err: err}
				}
				return writeJSON(out, doc)
			case formatYAML:
				if len(args) == 0 {
					return shapefile.DumpRegistry(out, a.reg)
				}
				shapes := make([]*reqshape.Shape, 0, len(args))
				for _, name := range args {
					s, err := a.reg.Lookup(name)
					if err != nil {
						return &cliError{Op: "export " + name, Code: ExitSchemaError, Err: err}
					}
					shapes = append(shapes, s)
				}
				return shapefile.Dump(out, shapes...)
			case formatOpenAPI:
				doc, err := openapi.NewGenerator(openapi.WithTitle(title), openapi.WithVersion(Version)).Generate(a.reg)
				if err != nil {
					return &cliError{Op: "export openapi", Code: ExitSchemaError, Err: err}
				}
				return writeJSON(out, doc)
			default:
				return fmt.Errorf("unknown format %q (want %s, %s or %s)", format, formatJSONSchema, formatYAML, formatOpenAPI)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSONSchema, "Output format: jsonschema, yaml or openapi")
	cmd.Flags().BoolVar(&strict, "strict", false, "Forbid undeclared properties in JSON Schema output")
	cmd.Flags().StringVar(&title, "title", "reqshape", "OpenAPI info.title")
	return cmd
}
