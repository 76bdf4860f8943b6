package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/eghact/eghact/internal/config"
	"github.com/eghact/eghact/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// DevtoolsAddr is written to devtools.addr.
	DevtoolsAddr string

	// ModulePath is the accelerated module written to bridge.module_path.
	ModulePath string

	// Overwrite allows replacing existing files.
	Overwrite bool
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of relative paths to file contents.
	Files map[string]string

	// Bridge enables the accelerated backend in the generated configuration.
	Bridge bool
}

// Available templates.
var templates = map[string]*Template{
	"tree":     treeTemplate(),
	"fragment": fragmentTemplate(),
	"bridge":   bridgeTemplate(),
}

var funcs = template.FuncMap{
	"quote": strconv.Quote,
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New(errors.CodeScaffoldUnknown).
			WithSubject(name).
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: " + strings.Join(List(), ", "))
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the template's file paths, sorted.
func (t *Template) Paths() []string {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Create generates a project from the template. Nothing is written when
// a file exists and cfg.Overwrite is false.
func (t *Template) Create(dir string, cfg Config) error {
	if cfg.ProjectName == "" {
		cfg.ProjectName = filepath.Base(dir)
	}
	if cfg.DevtoolsAddr == "" {
		cfg.DevtoolsAddr = config.DefaultDevtoolsAddr
	}
	if cfg.ModulePath == "" {
		cfg.ModulePath = config.DefaultModulePath
	}

	rendered := make(map[string][]byte, len(t.Files))
	for _, relPath := range t.Paths() {
		tmpl, err := template.New(relPath).Funcs(funcs).Parse(t.Files[relPath])
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data{Config: cfg, Bridge: t.Bridge}); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
		}

		fullPath := filepath.Join(dir, relPath)
		if !cfg.Overwrite {
			if _, err := os.Stat(fullPath); err == nil {
				return errors.New(errors.CodeScaffoldExists).
					WithSubject(fullPath).
					WithSuggestion("Pass --force to overwrite")
			}
		}
		rendered[fullPath] = buf.Bytes()
	}

	for fullPath, content := range rendered {
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(fullPath, content, 0644); err != nil {
			return err
		}
	}
	return nil
}

// data is what file templates are executed against.
type data struct {
	Config
	Bridge bool
}

const configFile = `# {{.ProjectName}}
debug: false
bridge:
  enabled: {{.Bridge}}
  module_path: {{quote .ModulePath}}
devtools:
  enabled: true
  addr: {{quote .DevtoolsAddr}}
log:
  level: info
  format: text
`

// treeTemplate returns a project previewing a YAML tree file.
func treeTemplate() *Template {
	return &Template{
		Name:        "tree",
		Description: "Configuration and a YAML tree to preview",
		Files: map[string]string{
			"eghact.yaml": configFile,
			"page.yaml": `# Preview with: eghact preview page.yaml
tag: main
props: {class: page}
children:
  - tag: h1
    children: [{{quote .ProjectName}}]
  - tag: ul
    children:
      - {tag: li, key: one, children: [One]}
      - {tag: li, key: two, children: [Two]}
`,
		},
	}
}

// fragmentTemplate returns a project previewing an HTML fragment.
func fragmentTemplate() *Template {
	return &Template{
		Name:        "fragment",
		Description: "Configuration and an HTML fragment to preview",
		Files: map[string]string{
			"eghact.yaml": configFile,
			"card.html": `<article class="card">
  <h2>{{html .ProjectName}}</h2>
  <p>Edit this fragment while <code>eghact preview card.html</code> runs.</p>
  <button type="button" disabled>Save</button>
</article>
`,
		},
	}
}

// bridgeTemplate returns a tree project with the accelerated backend enabled.
func bridgeTemplate() *Template {
	t := treeTemplate()
	t.Name = "bridge"
	t.Description = "Tree project with the accelerated backend enabled"
	t.Bridge = true
	return t
}
