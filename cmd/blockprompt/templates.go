package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joestump/blockprompt/internal/registry"
)

func newTemplatesCmd() *cobra.Command {
	var (
		file      string
		defaultID string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "templates [query]",
		Short: "List prompt templates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadFile(file, defaultID)
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return writeTemplates(cmd.OutOrStdout(), reg.Search(query), asJSON)
		},
	}
	cmd.Flags().StringVar(&file, "registry", "", "YAML registry overlay file")
	cmd.Flags().StringVar(&defaultID, "default", registry.DefaultTemplateID, "fallback template id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print templates as JSON")
	return cmd
}

func writeTemplates(w io.Writer, templates []registry.TemplateSpec, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBLOCKS\tDESCRIPTION")
	for _, t := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", t.ID, t.Name, len(t.Blocks), t.Description)
	}
	return tw.Flush()
}
