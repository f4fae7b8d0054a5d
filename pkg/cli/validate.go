package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/reqdiff/pkg/config"
	"github.com/getmockd/reqdiff/pkg/stub"
)

// fileCheck is the validation outcome of one stub file.
type fileCheck struct {
	File   string `json:"file"`
	Stubs  int    `json:"stubs"`
	Valid  bool   `json:"valid"`
	Errors string `json:"error,omitempty"`
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	var stubs stubInputs

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check stub files without matching anything",
		Long: `Check every stub file against the stub file schema, then build each
definition: regular expressions, JSON, XML, JSONPath, XPath and JSON Schema
expressions are compiled. Every problem in every file is reported.

Exits with status 1 when any file is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.log()
			paths, err := config.ExpandGlobs(stubs.globPatterns())
			if err != nil {
				return err
			}

			checks := make([]fileCheck, 0, len(paths))
			invalid := 0
			for _, path := range paths {
				check := fileCheck{File: path, Valid: true}
				if err := stub.ValidateFile(path); err != nil {
					check.Valid, check.Errors = false, err.Error()
				} else if loaded, err := stub.LoadFile(path); err != nil {
					check.Valid, check.Errors = false, err.Error()
				} else {
					check.Stubs = len(loaded)
				}
				if !check.Valid {
					invalid++
					logger.Debug("stub file invalid", "file", path, "error", check.Errors)
				}
				checks = append(checks, check)
			}

			w := cmd.OutOrStdout()
			err = root.printResult(w, checks, func() {
				for _, c := range checks {
					if c.Valid {
						fmt.Fprintf(w, "%s %s (%d stubs)\n", passLabel(), c.File, c.Stubs)
					} else {
						fmt.Fprintf(w, "%s %s\n  %s\n", failLabel(), c.File, c.Errors)
					}
				}
			})
			if err != nil {
				return err
			}
			if invalid > 0 {
				return fmt.Errorf("%w: %d of %d files", stub.ErrInvalidDefinition, invalid, len(paths))
			}
			return nil
		},
	}
	stubs.register(cmd)
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of stub files",
		Long: `Print the JSON Schema (draft 2020-12) that stub files follow. Editors can
use it for completion and inline validation of stub files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stub.Schema())
		},
	}
}
