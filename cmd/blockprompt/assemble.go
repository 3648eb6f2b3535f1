package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/joestump/blockprompt/internal/block"
	"github.com/joestump/blockprompt/internal/session"
)

func newAssembleCmd() *cobra.Command {
	var (
		render bool
		width  int
	)
	cmd := &cobra.Command{
		Use:   "assemble FILE",
		Short: "Print the prompt assembled from an exported blocks document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := session.ParseDocument(data)
			if err != nil {
				return err
			}
			if !render {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), block.Assemble(doc.Blocks))
				return err
			}
			return renderBlocks(cmd.OutOrStdout(), doc.Blocks, width)
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "pretty-print the blocks as markdown in the terminal")
	cmd.Flags().IntVar(&width, "width", 100, "word wrap width for --render")
	return cmd
}

// blocksMarkdown lays out the enabled blocks as markdown sections.
func blocksMarkdown(blocks []block.Instance) string {
	var b strings.Builder
	for _, blk := range blocks {
		if !blk.Enabled {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", blk.Label, blk.Content)
	}
	return b.String()
}

func renderBlocks(w io.Writer, blocks []block.Instance, width int) error {
	style := os.Getenv("GLAMOUR_STYLE")
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(blocksMarkdown(blocks))
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
