package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eghact/eghact/internal/config"
	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/pkg/bridge"
	"github.com/eghact/eghact/pkg/dom"
	"github.com/eghact/eghact/pkg/protocol"
	"github.com/eghact/eghact/pkg/vdom"
)

func diffCmd(g *globalFlags) *cobra.Command {
	var (
		format string
		stats  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Print the patches between two trees",
		Long: `Diff two trees and print the patches that turn the first into the second.

Inputs are YAML tree files, or HTML fragments (.html, .htm) compiled
through the configured bridge backend.

Formats:
  text  Indented, colored patch list
  json  Patch list as JSON, nodes rendered as HTML
  hex   Wire encoding of the patch list`,
		Example: `  eghact diff before.yaml after.yaml
  eghact diff card.html card-v2.html --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			backend := openBackend(ctx, g, cmd, cfg)
			defer backend.Close(ctx)

			prev, err := loadInput(ctx, backend, args[0])
			if err != nil {
				return err
			}
			next, err := loadInput(ctx, backend, args[1])
			if err != nil {
				return err
			}

			backend.StartTimer("diff")
			patches := backend.DiffTrees(ctx, prev, next)
			elapsed := backend.EndTimer("diff")

			if err := writePatches(cmd, g, format, patches); err != nil {
				return err
			}
			if stats {
				p := g.printer(cmd.ErrOrStderr())
				p.info("backend %s: %d patches in %s", backend.Name(), vdom.CountPatches(patches), elapsed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, hex)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print backend name and timing to stderr")

	return cmd
}

// openBackend initializes the bridge from the configuration. It never
// fails; an unavailable accelerated backend is logged and replaced.
func openBackend(ctx context.Context, g *globalFlags, cmd *cobra.Command, cfg *config.Config) bridge.Backend {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := g.logger(cmd, cfg)
	return bridge.Init(ctx, cfg.BridgeConfig(), logger)
}

// loadInput reads a tree from a YAML tree file or an HTML fragment.
func loadInput(ctx context.Context, backend bridge.Backend, path string) (*vdom.VNode, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.New(errors.CodeTemplateParseError).WithSubject(path).Wrap(err)
		}
		node, err := backend.CompileTemplateFragment(ctx, string(data))
		if err != nil {
			if ee, ok := err.(*errors.EghactError); ok && ee.Subject == "" {
				return nil, ee.WithSubject(path)
			}
			return nil, err
		}
		return node, nil
	default:
		return loadTree(path)
	}
}

func writePatches(cmd *cobra.Command, g *globalFlags, format string, patches []vdom.Patch) error {
	w := cmd.OutOrStdout()
	switch format {
	case "text":
		p := g.printer(w)
		if len(patches) == 0 {
			p.success("no changes")
			return nil
		}
		p.patches(patches, 0)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(patchesJSON(patches))
	case "hex":
		e := protocol.NewEncoder()
		protocol.EncodePatches(e, patches)
		_, err := fmt.Fprintln(w, hex.EncodeToString(e.Bytes()))
		return err
	default:
		return fmt.Errorf("unknown format %q (want text, json or hex)", format)
	}
}

type patchJSON struct {
	Op       string         `json:"op"`
	Node     string         `json:"node,omitempty"`
	Text     *string        `json:"text,omitempty"`
	Set      map[string]any `json:"set,omitempty"`
	Remove   []string       `json:"remove,omitempty"`
	Children []childJSON    `json:"children,omitempty"`
}

type childJSON struct {
	Index   int         `json:"index"`
	Patches []patchJSON `json:"patches"`
}

func patchesJSON(patches []vdom.Patch) []patchJSON {
	out := make([]patchJSON, 0, len(patches))
	for _, p := range patches {
		j := patchJSON{Op: strings.ToLower(p.Kind.String())}
		switch p.Kind {
		case vdom.PatchCreate, vdom.PatchReplace:
			j.Node = renderHTML(p.Node)
		case vdom.PatchText:
			text := p.Text
			j.Text = &text
		case vdom.PatchProps:
			for _, c := range p.Props {
				if c.Removed() {
					j.Remove = append(j.Remove, c.Key)
					continue
				}
				if j.Set == nil {
					j.Set = make(map[string]any)
				}
				if _, ok := vdom.FuncIdentity(c.Value); ok {
					j.Set[c.Key] = "<func>"
					continue
				}
				j.Set[c.Key] = c.Value
			}
			sort.Strings(j.Remove)
		case vdom.PatchChildren:
			for _, c := range p.Children {
				j.Children = append(j.Children, childJSON{Index: c.Index, Patches: patchesJSON(c.Patches)})
			}
		}
		out = append(out, j)
	}
	return out
}

// renderHTML serializes a static tree. Component nodes render empty.
func renderHTML(n *vdom.VNode) string {
	node := dom.NewAdapter().Materialize(n)
	if node == nil {
		return ""
	}
	return node.OuterHTML()
}
