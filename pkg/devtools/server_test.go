package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/internal/telemetry"
	"github.com/eghact/eghact/pkg/bridge"
	"github.com/eghact/eghact/pkg/component"
	"github.com/eghact/eghact/pkg/dom"
	"github.com/eghact/eghact/pkg/vdom"
)

type fixture struct {
	app  *component.App
	srv  *Server
	ts   *httptest.Server
	setN func(int)
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := telemetry.New(telemetry.WithRegistry(reg))

	f := &fixture{}
	item := component.Closure("Item", func(props vdom.Props) *vdom.VNode {
		return vdom.H("li", nil, props["label"])
	})
	counter := component.Closure("Counter", func(vdom.Props) *vdom.VNode {
		n, set := component.UseState(0)
		f.setN = set
		return vdom.H("ul", nil,
			vdom.H("p", nil, fmt.Sprint(n)),
			item.Node(vdom.Props{"label": "a"}),
		)
	})

	f.app = component.Bootstrap(counter, dom.NewElement("main"), component.WithMetrics(metrics))
	f.app.Mount()

	opts = append([]Option{WithGatherer(reg)}, opts...)
	f.srv = NewServer(f.app, opts...)
	f.ts = httptest.NewServer(f.srv.Handler())
	t.Cleanup(func() {
		f.srv.Close()
		f.ts.Close()
	})
	return f
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestTree(t *testing.T) {
	f := newFixture(t)
	resp, body := get(t, f.ts.URL+"/tree")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "<ul><p>0</p><li>a</li></ul>", body)
}

func TestInstances(t *testing.T) {
	f := newFixture(t)
	resp, body := get(t, f.ts.URL+"/instances")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var infos []InstanceInfo
	require.NoError(t, json.Unmarshal([]byte(body), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "Counter", infos[0].Name)
	assert.Equal(t, "Mounted", infos[0].Phase)
	assert.Equal(t, 1, infos[0].Renders)
	assert.Equal(t, "Item", infos[1].Name)
	assert.Equal(t, infos[0].ID, infos[1].Parent)
}

func TestStats(t *testing.T) {
	t.Run("without backend", func(t *testing.T) {
		f := newFixture(t)
		resp, _ := get(t, f.ts.URL+"/stats")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("with backend", func(t *testing.T) {
		backend := bridge.NewSoftware(bridge.WithMetrics(telemetry.New(telemetry.WithRegistry(prometheus.NewRegistry()))))
		backend.DiffTrees(context.Background(), vdom.Text("a"), vdom.Text("b"))

		f := newFixture(t, WithBackend(backend))
		resp, body := get(t, f.ts.URL+"/stats")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var stats bridge.Stats
		require.NoError(t, json.Unmarshal([]byte(body), &stats))
		assert.Equal(t, "software", stats.Backend)
		assert.Equal(t, uint64(1), stats.Calls[bridge.OpDiff])
	})
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	resp, body := get(t, f.ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "eghact_renders_total")
	assert.Contains(t, body, "eghact_mounted_instances 2")
}

func TestMetrics_HTTP(t *testing.T) {
	f := newFixture(t)
	get(t, f.ts.URL+"/tree")
	dialFeed(t, f)

	_, body := get(t, f.ts.URL+"/metrics")
	assert.Contains(t, body, `eghact_devtools_requests_total{route="/tree",status="2xx"} 1`)
	assert.Contains(t, body, "eghact_devtools_feed_clients 1")

	f.srv.Close()
	_, body = get(t, f.ts.URL+"/metrics")
	assert.Contains(t, body, "eghact_devtools_feed_clients 0")
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	resp, _ := get(t, f.ts.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func dialFeed(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return f.srv.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func TestPatchFeed(t *testing.T) {
	f := newFixture(t)
	conn := dialFeed(t, f)

	f.app.Do(func() { f.setN(1) })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)

	frame, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, "Counter", frame.Component)
	assert.Equal(t, f.app.Root().ID(), frame.Instance)
	assert.Equal(t, `[Children(0:[Children(0:[Text("1")])])]`, vdom.FormatPatches(frame.Patches))
}

func TestPatchFeed_CloseDisconnects(t *testing.T) {
	f := newFixture(t)
	conn := dialFeed(t, f)

	f.srv.Close()
	assert.Zero(t, f.srv.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	// Renders after Close are not observed.
	f.app.Do(func() { f.setN(5) })
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/tree")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestFrameRoundTrip(t *testing.T) {
	patches := vdom.Diff(
		vdom.H("p", vdom.Props{"class": "a"}, "x"),
		vdom.H("p", vdom.Props{"class": "b"}, "y", vdom.H("b", nil)),
	)
	frame, err := DecodeFrame(EncodeFrame(42, "Card", patches))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), frame.Instance)
	assert.Equal(t, "Card", frame.Component)
	assert.Equal(t, vdom.FormatPatches(patches), vdom.FormatPatches(frame.Patches))
}

func TestDecodeFrame_Malformed(t *testing.T) {
	valid := EncodeFrame(1, "X", nil)
	for name, b := range map[string][]byte{
		"empty":     nil,
		"truncated": valid[:len(valid)-1],
		"trailing":  append(append([]byte{}, valid...), 0x00),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeFrame(b)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeProtocolDecode))
		})
	}
}
