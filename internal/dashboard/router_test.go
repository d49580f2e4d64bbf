package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meline-schndr/pizzaline/internal/catalog"
	"github.com/meline-schndr/pizzaline/internal/catalogstore"
	"github.com/meline-schndr/pizzaline/internal/production"
	"github.com/meline-schndr/pizzaline/internal/sharedctx"
	"github.com/meline-schndr/pizzaline/internal/station"
	"github.com/meline-schndr/pizzaline/internal/stats"
)

type emptyStore struct{}

func (emptyStore) LoadClients(ctx context.Context) ([]catalogstore.ClientRow, error) { return nil, nil }
func (emptyStore) LoadPizzas(ctx context.Context) ([]catalogstore.PizzaRow, error)   { return nil, nil }
func (emptyStore) LoadStations(ctx context.Context) ([]catalogstore.StationRow, error) {
	return nil, nil
}
func (emptyStore) FindClient(ctx context.Context, id int) (catalogstore.ClientRow, bool, error) {
	return catalogstore.ClientRow{}, false, nil
}
func (emptyStore) FindPizza(ctx context.Context, name, size string) (catalogstore.PizzaRow, bool, error) {
	return catalogstore.PizzaRow{}, false, nil
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>pizzaline</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	cat := catalog.New(emptyStore{}, nil)
	s1 := station.New(1, 20, true, "", "")
	mgr := production.NewManager([]*station.Station{s1})
	shared := sharedctx.New(cat, mgr, stats.New())

	return New(shared, dir), dir
}

func TestStatsEndpointReturnsExpectedShape(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS header = %q, want *", got)
	}

	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Stations) != 1 || resp.Stations[0].ID != 1 || resp.Stations[0].MaxCapacity != 20 {
		t.Errorf("unexpected station block: %+v", resp.Stations)
	}
}

func TestStaticAssetServesIndexAtRoot(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content-type = %q, want text/html", ct)
	}
}

func TestStaticAssetUnknownPathReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist.css", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestStaticAssetRejectsPathTraversal(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/../../../../etc/passwd", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Fatal("expected path traversal attempt to be rejected")
	}
}

func TestSnapshotReportsIdleStationLoad(t *testing.T) {
	srv, _ := newTestServer(t)
	_, stations := srv.shared.Snapshot(time.Now())
	if len(stations) != 1 || stations[0].CurrentLoad != 0 {
		t.Errorf("expected one idle station with load 0, got %+v", stations)
	}
}
