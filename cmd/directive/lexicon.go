package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newLexiconCmd() *cobra.Command {
	var (
		path   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Print the effective contradiction table",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadLexicon(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(table)
			case "yaml":
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(table)
			default:
				return fmt.Errorf("%w: %q", errInvalidFormat, format)
			}
		},
	}

	cmd.Flags().StringVar(&path, "lexicon", "", "Contradiction lexicon YAML (default built-in)")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml|json)")

	return cmd
}
