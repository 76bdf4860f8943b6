package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eghact/eghact/internal/config"
	"github.com/eghact/eghact/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┬ ┬┌─┐┌─┐┌┬┐
  ├┤ │ ┬├─┤├─┤│   │
  └─┘└─┘┴ ┴┴ ┴└─┘ ┴
`

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	noColor    bool
}

// load reads the configuration named by --config, or the one of the
// enclosing project.
func (g *globalFlags) load() (*config.Config, error) {
	if g.configPath != "" {
		return config.LoadFile(g.configPath)
	}
	return config.LoadFromWorkingDir()
}

func (g *globalFlags) printer(w io.Writer) printer {
	return newPrinter(w, g.noColor)
}

// logger builds the configured logger on the command's error stream.
func (g *globalFlags) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return cfg.Logger(cmd.ErrOrStderr())
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "eghact",
		Short: "Inspect, diff and preview eghact component trees",
		Long: `eghact works with the virtual trees rendered by eghact components.

  • diff two trees and print the patches between them
  • compile HTML fragments into trees
  • preview a tree file live, with hot reload and devtools
  • inspect a running devtools server`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Configuration file (default: eghact.yaml of the enclosing project)")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(g),
		diffCmd(g),
		compileCmd(g),
		previewCmd(g),
		inspectCmd(g),
		versionCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}
