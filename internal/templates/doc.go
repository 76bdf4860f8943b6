// Package templates provides the project scaffolds written by eghact init.
//
// Every template writes an eghact.yaml configuration plus an input file
// that eghact preview and eghact diff accept as is.
//
// # Available Templates
//
//   - tree: a YAML tree file (page.yaml)
//   - fragment: an HTML fragment (card.html)
//   - bridge: the tree template with the accelerated backend enabled
//
// # Usage
//
//	tmpl, err := templates.Get("tree")
//	if err != nil {
//	    return err
//	}
//	if err := tmpl.Create(dir, templates.Config{ProjectName: "demo"}); err != nil {
//	    return err
//	}
//
// # Template Variables
//
//	{{.ProjectName}}   - Name of the project, defaults to the directory name
//	{{.DevtoolsAddr}}  - Devtools listen address
//	{{.ModulePath}}    - Accelerated module path
//	{{.Bridge}}        - Whether the accelerated backend is enabled
package templates
