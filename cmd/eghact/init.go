package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eghact/eghact/internal/templates"
)

func initCmd(g *globalFlags) *cobra.Command {
	var (
		template string
		name     string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create an eghact.yaml and a sample input file",
		Long: `Init writes a configuration and a sample input into dir (default: the
current directory).

Templates:
  tree      page.yaml, a YAML tree
  fragment  card.html, an HTML fragment
  bridge    page.yaml with the accelerated backend enabled`,
		Example: `  eghact init
  eghact init demo --template fragment`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			tmpl, err := templates.Get(template)
			if err != nil {
				return err
			}
			if err := tmpl.Create(abs, templates.Config{ProjectName: name, Overwrite: force}); err != nil {
				return err
			}

			p := g.printer(cmd.OutOrStdout())
			p.success("created %s project in %s", tmpl.Name, dir)
			for _, path := range tmpl.Paths() {
				p.info("%s", filepath.Join(dir, path))
			}
			if input := sampleInput(tmpl); input != "" {
				fmt.Fprintln(p.out)
				p.info("next: eghact preview %s", filepath.Join(dir, input))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "tree", "Project template (tree, fragment, bridge)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: the directory name)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")

	return cmd
}

// sampleInput returns the first file the template writes besides the
// configuration.
func sampleInput(t *templates.Template) string {
	for _, path := range t.Paths() {
		if path != "eghact.yaml" {
			return path
		}
	}
	return ""
}
