// Package dashboard is the read-only HTTP surface of §4.6: JSON counters
// and station snapshots, plus the static web asset directory and a
// supplementary websocket push channel.
package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/meline-schndr/pizzaline/internal/sharedctx"
)

// snapshotPushInterval is how often the dashboard agent pushes a fresh
// station-load snapshot to connected /api/stream clients.
const snapshotPushInterval = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Server is the dashboard HTTP agent (§5 — "owns the TCP listen socket,
// handles ... daemon, torn down with the process").
type Server struct {
	shared   *sharedctx.SharedContext
	assetDir string
	hub      *Hub
	engine   *gin.Engine
}

// New builds the gin engine and routes. assetDir is the directory static
// files are served from.
func New(shared *sharedctx.SharedContext, assetDir string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{shared: shared, assetDir: assetDir, hub: newHub(), engine: engine}

	// CORS, matching the access policy of §4.6 ("Access-Control-Allow-Origin: *").
	engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	engine.GET("/api/stats", s.handleStats)
	engine.GET("/api/stream", s.handleStream)
	engine.NoRoute(s.handleStaticAsset)

	return s
}

// statsResponse mirrors §4.6's JSON shape exactly.
type statsResponse struct {
	Stats    statsBlock     `json:"stats"`
	Stations []stationBlock `json:"stations"`
}

type statsBlock struct {
	Accepted int `json:"accepted"`
	Refused  int `json:"refused"`
}

type stationBlock struct {
	ID           int      `json:"id"`
	Available    bool     `json:"available"`
	MaxCapacity  int      `json:"max_capacity"`
	CurrentLoad  int      `json:"current_load"`
	Size         string   `json:"size"`
	Restrictions []string `json:"restrictions"`
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.statsSnapshot())
}

// statsSnapshot builds the §4.6 JSON shape from the current shared state.
// Used by both the /api/stats handler and the periodic websocket push.
func (s *Server) statsSnapshot() statsResponse {
	statSnap, stations := s.shared.Snapshot(time.Now())

	resp := statsResponse{
		Stats: statsBlock{Accepted: statSnap.Accepted, Refused: statSnap.Refused},
	}
	for _, st := range stations {
		restrictions := st.Restrictions
		if restrictions == nil {
			restrictions = []string{}
		}
		resp.Stations = append(resp.Stations, stationBlock{
			ID:           st.ID,
			Available:    st.Available,
			MaxCapacity:  st.MaxCapacity,
			CurrentLoad:  st.CurrentLoad,
			Size:         st.Size,
			Restrictions: restrictions,
		})
	}
	return resp
}

// handleStream upgrades to a websocket and registers the connection with
// the push Hub. This is supplementary to /api/stats, not a replacement.
func (s *Server) handleStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️  dashboard websocket upgrade failed: %v", err)
		return
	}
	s.hub.addClient(conn)
	log.Printf("📡 dashboard client connected, total=%d", s.hub.clientCount())

	defer func() {
		s.hub.removeClient(conn)
		log.Printf("📡 dashboard client disconnected, total=%d", s.hub.clientCount())
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// handleStaticAsset serves a file from the web asset directory, matching
// §4.6's "serve a file ... unknown -> 404, content-type by extension
// (.html|.css|.js)".
func (s *Server) handleStaticAsset(c *gin.Context) {
	rel := filepath.Clean(c.Request.URL.Path)
	if rel == "/" {
		rel = "/index.html"
	}

	full := filepath.Join(s.assetDir, rel)
	if !withinDir(s.assetDir, full) {
		c.Status(http.StatusNotFound)
		return
	}

	switch filepath.Ext(full) {
	case ".html":
		c.Header("Content-Type", "text/html; charset=utf-8")
	case ".css":
		c.Header("Content-Type", "text/css; charset=utf-8")
	case ".js":
		c.Header("Content-Type", "application/javascript; charset=utf-8")
	}

	c.File(full)
}

func withinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.'
}

// pushSnapshots ticks every snapshotPushInterval, marshals the current
// stats/station snapshot, and broadcasts it to every connected /api/stream
// client, until ctx is cancelled. This is the sole producer for the Hub's
// broadcast channel.
func (s *Server) pushSnapshots(ctx context.Context) {
	ticker := time.NewTicker(snapshotPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.hub.clientCount() == 0 {
				continue
			}
			payload, err := json.Marshal(s.statsSnapshot())
			if err != nil {
				log.Printf("⚠️  dashboard snapshot marshal failed: %v", err)
				continue
			}
			s.hub.Broadcast(payload)
		}
	}
}

// Run starts the Hub fan-out goroutine and the periodic snapshot push,
// then serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.hub.Run(ctx)
	go s.pushSnapshots(ctx)
	log.Printf("✅ dashboard listening on %s", addr)
	return s.engine.Run(addr)
}

// Handler exposes the underlying http.Handler, useful for tests that want
// httptest.NewServer without binding a real port.
func (s *Server) Handler() http.Handler {
	return s.engine
}
