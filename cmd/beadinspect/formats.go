package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/beadinspect/internal/core"
)

func newFormatsCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the supported data formats and their checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := core.DescribeCatalog()
			w := cmd.OutOrStdout()

			if asYAML {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(cat); err != nil {
					return fmt.Errorf("encode catalog: %w", err)
				}
				return enc.Close()
			}

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FORMAT\tFILE\tID COLUMN\tCOLUMNS\tCOLUMN CHECKS\tROW RULES")
			for _, f := range cat.Formats {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
					f.Name, f.FileName, f.IDColumn, len(f.Columns), len(f.ColumnChecks), len(f.RowChecks))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print every column, validator and row rule as YAML")
	return cmd
}
