package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/eghact/eghact/pkg/bridge"
	"github.com/eghact/eghact/pkg/devtools"
)

func inspectCmd(g *globalFlags) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the instances and bridge stats of a devtools server",
		Long: `Inspect connects to a running devtools server (see preview) and prints
the mounted component instances as a tree, followed by the bridge
backend counters.

With --watch it stays connected and prints every patch list the app
applies until interrupted.`,
		Example: `  eghact inspect
  eghact inspect --addr localhost:7070 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				cfg, err := g.load()
				if err != nil {
					return err
				}
				addr = cfg.Devtools.Addr
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			p := g.printer(cmd.OutOrStdout())
			base := "http://" + addr

			var infos []devtools.InstanceInfo
			if _, err := getJSON(ctx, base+"/instances", &infos); err != nil {
				return err
			}
			writeInstances(p, infos)

			var stats bridge.Stats
			status, err := getJSON(ctx, base+"/stats", &stats)
			switch {
			case err != nil && status == http.StatusNotFound:
				p.info("no bridge backend attached")
			case err != nil:
				return err
			default:
				writeStats(p, stats)
			}

			if !watch {
				return nil
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return followFeed(ctx, p, "ws://"+addr+"/ws")
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Devtools address (default: devtools.addr from the configuration)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the patch feed")

	return cmd
}

// getJSON decodes the JSON body of a GET request. It returns the status
// code alongside non-2xx errors.
func getJSON(ctx context.Context, url string, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("connect to devtools: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("GET %s: %s: %s", url, resp.Status, strings.TrimSpace(string(body)))
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}

// writeInstances prints instances indented under their parents.
func writeInstances(p printer, infos []devtools.InstanceInfo) {
	if len(infos) == 0 {
		p.info("no mounted instances")
		return
	}
	known := make(map[uint64]bool, len(infos))
	children := make(map[uint64][]devtools.InstanceInfo)
	for _, info := range infos {
		known[info.ID] = true
	}
	for _, info := range infos {
		parent := info.Parent
		if !known[parent] {
			parent = 0
		}
		children[parent] = append(children[parent], info)
	}

	var walk func(parent uint64, depth int)
	walk = func(parent uint64, depth int) {
		list := children[parent]
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
		for _, info := range list {
			fmt.Fprintf(p.out, "%s%s %s (%s, %d renders)\n",
				strings.Repeat("  ", depth),
				info.Name,
				p.paint(fmt.Sprintf("#%d", info.ID), colorGray),
				info.Phase,
				info.Renders,
			)
			walk(info.ID, depth+1)
		}
	}
	walk(0, 0)
}

func writeStats(p printer, stats bridge.Stats) {
	fmt.Fprintf(p.out, "backend %s\n", p.paint(stats.Backend, colorCyan))
	ops := make([]string, 0, len(stats.Calls))
	for op := range stats.Calls {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		line := fmt.Sprintf("%s: %d calls", op, stats.Calls[op])
		if n := stats.Fallbacks[op]; n > 0 {
			line += ", " + p.paint(fmt.Sprintf("%d fallbacks", n), colorYellow)
		}
		p.info("%s", line)
	}
	for _, name := range stats.TimerNames() {
		t := stats.Timers[name]
		p.info("timer %s: %d runs, last %s, total %s", name, t.Count, t.Last, t.Total)
	}
}

// followFeed prints feed frames until ctx is done or the server closes
// the connection.
func followFeed(ctx context.Context, p printer, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connect to patch feed: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	p.success("following patch feed at %s", url)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		frame, err := devtools.DecodeFrame(data)
		if err != nil {
			p.warn("skipping frame: %v", err)
			continue
		}
		fmt.Fprintf(p.out, "%s %s\n", frame.Component, p.paint(fmt.Sprintf("#%d", frame.Instance), colorGray))
		p.patches(frame.Patches, 1)
	}
}
