package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eghact/eghact/pkg/bridge"
	"github.com/eghact/eghact/pkg/component"
	"github.com/eghact/eghact/pkg/middleware"
	"github.com/eghact/eghact/pkg/vdom"
)

const (
	// sendBuffer is the number of frames queued per client before the
	// client is dropped.
	sendBuffer = 64

	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithBackend exposes the backend's counters on /stats.
func WithBackend(b bridge.Backend) Option {
	return func(s *Server) { s.backend = b }
}

// WithGatherer sets the registry served on /metrics. Default:
// prometheus.DefaultGatherer. When g is also a Registerer the HTTP
// collectors are registered on it.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCheckOrigin sets the websocket origin check. Default: allow all.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// Server is the devtools HTTP server.
type Server struct {
	app      *component.App
	backend  bridge.Backend
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader
	metrics  *middleware.Metrics

	mu        sync.RWMutex
	clients   map[*client]struct{}
	unobserve func()
	closed    bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// NewServer creates a server for app and subscribes to its patch feed.
func NewServer(app *component.App, opts ...Option) *Server {
	s := &Server{
		app:      app,
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default(),
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "devtools")
	reg, _ := s.gatherer.(prometheus.Registerer)
	s.metrics = middleware.NewMetrics(middleware.WithRegistry(reg))
	s.router = s.routes()
	s.unobserve = app.Manager().Observe(s.broadcast)
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.OpenTelemetry(middleware.WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != "/metrics"
	})))
	r.Use(s.metrics.Handler)
	r.Use(chimw.NoCache)

	r.Get("/tree", s.handleTree)
	r.Get("/instances", s.handleInstances)
	r.Get("/stats", s.handleStats)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleWebSocket)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devtools listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close stops the patch feed and disconnects all clients.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	s.unobserve()
	for c := range clients {
		s.metrics.FeedDisconnected()
		c.close()
	}
}

// ClientCount returns the number of connected feed clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleTree(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.app.HTML()))
}

// InstanceInfo describes a mounted instance.
type InstanceInfo struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Phase   string `json:"phase"`
	Parent  uint64 `json:"parent,omitempty"`
	Renders int    `json:"renders"`
}

func (s *Server) handleInstances(w http.ResponseWriter, _ *http.Request) {
	var infos []InstanceInfo
	s.app.Do(func() {
		for _, inst := range s.app.Manager().Instances() {
			info := InstanceInfo{
				ID:      inst.ID(),
				Name:    inst.Name(),
				Phase:   inst.Phase().String(),
				Renders: inst.Renders(),
			}
			if p := inst.Parent(); p != nil {
				info.Parent = p.ID()
			}
			infos = append(infos, info)
		}
	})
	if infos == nil {
		infos = []InstanceInfo{}
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.backend == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no backend attached"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.backend.Stats())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response failed", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.metrics.FeedConnected()

	go s.writePump(c)

	// Reads only detect the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.drop(c)
}

func (s *Server) writePump(c *client) {
	defer c.conn.Close()
	for frame := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			s.logger.Debug("feed write failed", "error", err)
			s.drop(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		s.metrics.FeedDisconnected()
	}
	c.close()
}

// broadcast queues a feed frame for every client. Slow clients whose queue
// is full are dropped.
func (s *Server) broadcast(inst *component.Instance, patches []vdom.Patch) {
	frame := EncodeFrame(inst.ID(), inst.Name(), patches)

	s.mu.RLock()
	var slow []*client
	for c := range s.clients {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	s.mu.RUnlock()

	for _, c := range slow {
		s.logger.Warn("dropping slow feed client", "remote", c.conn.RemoteAddr().String())
		s.drop(c)
	}
}
