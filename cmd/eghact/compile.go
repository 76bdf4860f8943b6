package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/pkg/protocol"
)

func compileCmd(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "compile <fragment.html|->",
		Short: "Compile an HTML fragment into a tree",
		Long: `Compile an HTML fragment into a tree using the configured bridge backend.

Whitespace-only text and comments are dropped, and so are event handler
attributes. A fragment with several top-level nodes becomes a fragment
tree.

Formats:
  yaml  Tree file accepted by diff and preview
  html  Normalized HTML
  hex   Wire encoding of the tree`,
		Example: `  eghact compile card.html
  echo '<p class="x">hi</p>' | eghact compile - --format hex`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			markup, err := readMarkup(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			backend := openBackend(ctx, g, cmd, cfg)
			defer backend.Close(ctx)

			node, err := backend.CompileTemplateFragment(ctx, markup)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(specOf(node)); err != nil {
					return err
				}
				return enc.Close()
			case "html":
				_, err := fmt.Fprintln(w, renderHTML(node))
				return err
			case "hex":
				_, err := fmt.Fprintln(w, hex.EncodeToString(protocol.MarshalTree(node)))
				return err
			default:
				return fmt.Errorf("unknown format %q (want yaml, html or hex)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml, html, hex)")

	return cmd
}

// readMarkup reads the fragment at path, or stdin for "-".
func readMarkup(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.New(errors.CodeTemplateParseError).WithSubject(path).Wrap(err)
	}
	return string(data), nil
}
