package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eghact/eghact/internal/watch"
	"github.com/eghact/eghact/pkg/bridge"
	"github.com/eghact/eghact/pkg/component"
	"github.com/eghact/eghact/pkg/devtools"
	"github.com/eghact/eghact/pkg/dom"
	"github.com/eghact/eghact/pkg/reactive"
	"github.com/eghact/eghact/pkg/vdom"
)

// preview renders a tree file as the root component of an app and swaps
// the tree in whenever the file changes.
type preview struct {
	path    string
	backend bridge.Backend
	logger  *slog.Logger
	queue   *reactive.Queue
	app     *component.App
	setTree func(*vdom.VNode)
}

func newPreview(ctx context.Context, path string, backend bridge.Backend, logger *slog.Logger, debug bool) (*preview, error) {
	initial, err := loadInput(ctx, backend, path)
	if err != nil {
		return nil, err
	}

	p := &preview{
		path:    path,
		backend: backend,
		logger:  logger,
		queue:   reactive.NewQueue(reactive.WithOrderer(bridge.Orderer(backend))),
	}
	root := component.Closure("Preview", func(vdom.Props) *vdom.VNode {
		tree, set := component.UseState(initial)
		p.setTree = set
		return tree
	})
	p.app = component.Bootstrap(root, dom.NewElement("main"),
		component.WithDiffer(backend),
		component.WithLogger(logger),
		component.WithDebug(debug),
		component.WithContext(ctx),
		component.WithScheduler(p.queue.Schedule),
	)
	p.app.Mount()
	return p, nil
}

// reload re-reads the tree file and renders it. A file that fails to load
// keeps the current tree.
func (p *preview) reload(ctx context.Context) bool {
	tree, err := loadInput(ctx, p.backend, p.path)
	if err != nil {
		p.logger.Warn("reload failed, keeping current tree", "path", p.path, "error", err)
		return false
	}
	var runs int
	p.app.Do(func() {
		p.setTree(tree)
		runs = p.queue.Flush()
	})
	p.logger.Debug("reloaded", "path", p.path, "runs", runs)
	return true
}

// onChange reacts to a batch of watcher changes.
func (p *preview) onChange(ctx context.Context, changes []watch.Change) {
	for _, c := range changes {
		if c.Removed {
			p.logger.Warn("tree file removed, keeping current tree", "path", c.Path)
			return
		}
	}
	p.reload(ctx)
}

func previewCmd(g *globalFlags) *cobra.Command {
	var (
		addr    string
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "preview <tree.yaml|fragment.html>",
		Short: "Serve a tree file through devtools with hot reload",
		Long: `Preview renders a tree file as the root of an app and serves it through
the devtools server:

  /tree       rendered HTML
  /instances  mounted instances
  /stats      bridge backend counters
  /metrics    Prometheus metrics
  /ws         binary patch feed

Editing the file re-renders the app; the resulting patches are pushed to
connected feed clients (see inspect --watch).`,
		Example: `  eghact preview page.yaml
  eghact preview card.html --addr localhost:9000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Devtools.Addr
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := g.logger(cmd, cfg)
			backend := openBackend(ctx, g, cmd, cfg)
			defer backend.Close(context.Background())

			pv, err := newPreview(ctx, args[0], backend, logger, cfg.Debug)
			if err != nil {
				return err
			}
			defer pv.app.Unmount()

			if !noWatch {
				w, err := watch.New(watch.Config{Paths: []string{args[0]}}, logger)
				if err != nil {
					return err
				}
				w.OnChange(func(changes []watch.Change) { pv.onChange(ctx, changes) })
				go func() {
					if err := w.Start(ctx); err != nil && ctx.Err() == nil {
						logger.Error("watcher stopped", "error", err)
					}
				}()
				defer w.Stop()
			}

			srv := devtools.NewServer(pv.app,
				devtools.WithBackend(backend),
				devtools.WithLogger(logger),
			)
			out := g.printer(cmd.OutOrStdout())
			printBanner(cmd.OutOrStdout())
			out.success("previewing %s with the %s backend", args[0], backend.Name())
			out.info("tree:   http://%s/tree", addr)
			out.info("feed:   ws://%s/ws", addr)
			out.info("stop:   Ctrl+C")
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default: devtools.addr from the configuration)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload on file changes")

	return cmd
}
