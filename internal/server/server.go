package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tomster12/growth-sub000/internal/index"
	"github.com/tomster12/growth-sub000/pkg/config"
	"github.com/tomster12/growth-sub000/pkg/export"
	"github.com/tomster12/growth-sub000/pkg/validation"
	"github.com/tomster12/growth-sub000/pkg/world"
)

// Server is the local development server for inspecting generated worlds.
type Server struct {
	cfg    *config.Config
	port   int
	logger *zap.Logger
	index  *index.Index

	// genMu serialises generation; current is guarded by mu.
	genMu   sync.Mutex
	mu      sync.RWMutex
	current *world.World

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	subsMu   sync.Mutex
	subs     map[uint64]chan []byte
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithIndex records every generation attempt in idx.
func WithIndex(idx *index.Index) Option {
	return func(s *Server) { s.index = idx }
}

// New creates a server generating worlds from cfg.
func New(cfg *config.Config, port int, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		port:   port,
		logger: zap.NewNop(),
		subs:   make(map[uint64]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/world", s.handleWorld)
	mux.HandleFunc("GET /api/world.geojson", s.handleGeoJSON)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/validation", s.handleValidation)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("GET /", s.handleIndex)
	return mux
}

// Start generates an initial world and launches the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if _, err := s.Generate(ctx, s.cfg.Seed); err != nil {
		s.logger.Warn("initial generation failed", zap.Error(err))
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("worldgen server starting", zap.String("addr", "http://localhost"+addr))

	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Current returns the last generated world, or nil.
func (s *Server) Current() *world.World {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Generate builds a world from the server config with the given seed,
// makes it current and pushes its summary to every stream client.
func (s *Server) Generate(ctx context.Context, seed int64) (*world.World, error) {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	cfg := *s.cfg
	cfg.Seed = seed
	w, err := world.Generate(ctx, &cfg,
		world.WithLogger(s.logger),
		world.WithObserver(func(a world.Attempt) { s.record(ctx, a) }),
	)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = w
	s.mu.Unlock()

	s.broadcast(w.Summarize())
	return w, nil
}

func (s *Server) record(ctx context.Context, a world.Attempt) {
	if s.index == nil {
		return
	}
	if err := s.index.Record(ctx, index.FromAttempt(a)); err != nil {
		s.logger.Warn("recording run failed", zap.String("run_id", a.RunID), zap.Error(err))
	}
}

func (s *Server) broadcast(sum world.Summary) {
	b, err := json.Marshal(sum)
	if err != nil {
		s.logger.Error("encoding summary failed", zap.Error(err))
		return
	}
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- b:
		default:
			s.logger.Debug("dropping summary for slow stream client", zap.Uint64("client", id))
		}
	}
}

func (s *Server) subscribe() (uint64, chan []byte) {
	id := s.nextID.Add(1)
	ch := make(chan []byte, 8)
	s.subsMu.Lock()
	s.subs[id] = ch
	s.subsMu.Unlock()
	return id, ch
}

func (s *Server) unsubscribe(id uint64) {
	s.subsMu.Lock()
	delete(s.subs, id)
	s.subsMu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>worldgen</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>worldgen</h1>
<p>Fetch <code>/api/world.geojson</code> or subscribe to <code>/api/stream</code>.</p>
</div>
</body></html>`)
}

func (s *Server) handleWorld(w http.ResponseWriter, _ *http.Request) {
	cur := s.Current()
	if cur == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no world generated yet"))
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, _ *http.Request) {
	cur := s.Current()
	if cur == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no world generated yet"))
		return
	}
	b, err := export.GeoJSON(cur)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(b)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	seed := s.cfg.Seed
	if cur := s.Current(); cur != nil {
		seed = cur.Seed + 1
	}
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("bad seed %q", v))
			return
		}
		seed = n
	}

	gen, err := s.Generate(r.Context(), seed)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, gen.Summarize())
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	report := validation.ValidateSchema(s.cfg)
	report.Merge(validation.ValidateAnalytic(s.cfg))
	if cur := s.Current(); cur != nil {
		report.Merge(validation.ValidateGenerated(cur.Graph, cur.Biomes, s.cfg.Biomes.MaxBiomeCount))
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id, out := s.subscribe()
	defer s.unsubscribe(id)
	s.logger.Debug("stream client joined", zap.Uint64("client", id))

	if cur := s.Current(); cur != nil {
		if b, err := json.Marshal(cur.Summarize()); err == nil {
			select {
			case out <- b:
			default:
			}
		}
	}

	// Reader loop only watches for the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case b := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}
