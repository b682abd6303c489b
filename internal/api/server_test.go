package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/abelbrown/herbal/internal/catalog"
	"github.com/abelbrown/herbal/internal/session"
	"github.com/abelbrown/herbal/internal/store"
)

func testPlants() []catalog.Plant {
	return []catalog.Plant{
		{Name: "Tulsi", LatinName: "Ocimum tenuiflorum", Systems: []string{"Respiratory", "Nervous"}, Diseases: []string{"cold", "stress"}, PartsUsed: "Leaves"},
		{Name: "Neem", LatinName: "Azadirachta indica", Systems: []string{"Skin"}, Diseases: []string{"acne"}, PartsUsed: "Bark"},
		{Name: "Aloe Vera", LatinName: "Aloe barbadensis", Systems: []string{"Skin", "Digestive"}, Diseases: []string{"burns"}, PartsUsed: "Gel"},
	}
}

func newTestServer(t *testing.T, kv store.KV) (*Server, *httptest.Server) {
	t.Helper()
	if kv == nil {
		s, err := store.Open(":memory:")
		if err != nil {
			t.Fatalf("store.Open: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		kv = s
	}
	srv := New(testPlants(), kv, session.Options{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func do(t *testing.T, method, url, user string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func cardNames(cards []session.Card) []string {
	var out []string
	for _, c := range cards {
		out = append(out, c.Name)
	}
	return out
}

func TestPlantsFiltering(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		query string
		want  string
	}{
		{"", "Tulsi,Neem,Aloe Vera"},
		{"?q=cold", "Tulsi"},
		{"?q=tul&mode=plant", "Tulsi"},
		{"?system=skin", "Neem,Aloe Vera"},
		{"?q=cold&mode=plant", ""},
		{"?q=an", ""},
		{"?q=%20acne%20", "Neem"},
	}
	for _, tt := range tests {
		resp := do(t, http.MethodGet, ts.URL+"/api/plants"+tt.query, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", tt.query, resp.StatusCode)
		}
		got := decode[plantsResp](t, resp)
		if names := strings.Join(cardNames(got.Results), ","); names != tt.want {
			t.Errorf("%q: got %q, want %q", tt.query, names, tt.want)
		}
		if got.Count != len(got.Results) {
			t.Errorf("%q: count %d != %d results", tt.query, got.Count, len(got.Results))
		}
	}
}

func TestPlantsBadMode(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := do(t, http.MethodGet, ts.URL+"/api/plants?mode=herb", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestPlantDetails(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := do(t, http.MethodGet, ts.URL+"/api/plants/Aloe%20Vera", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	d := decode[plantResp](t, resp)
	if d.Name != "Aloe Vera" || d.Image != catalog.DefaultImage {
		t.Errorf("details = %+v", d)
	}

	if resp := do(t, http.MethodGet, ts.URL+"/api/plants/Mandrake", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown plant status = %d", resp.StatusCode)
	}
}

func TestSystems(t *testing.T) {
	_, ts := newTestServer(t, nil)
	got := decode[[]string](t, do(t, http.MethodGet, ts.URL+"/api/systems", ""))
	if strings.Join(got, ",") != "Respiratory,Nervous,Skin,Digestive" {
		t.Errorf("systems = %v", got)
	}
}

func TestFavoritesToggle(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	if resp := do(t, http.MethodPost, ts.URL+"/api/favorites/Neem", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous toggle status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, ts.URL+"/api/favorites/Mandrake", "asha"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown plant toggle status = %d", resp.StatusCode)
	}

	got := decode[toggleResp](t, do(t, http.MethodPost, ts.URL+"/api/favorites/Neem", "asha"))
	if !got.Favorite || !got.Persisted {
		t.Errorf("toggle = %+v", got)
	}

	favs := decode[favoritesResp](t, do(t, http.MethodGet, ts.URL+"/api/favorites?user=asha", ""))
	if strings.Join(favs.Favorites, ",") != "Neem" {
		t.Errorf("favorites = %+v", favs)
	}

	cards := decode[plantsResp](t, do(t, http.MethodGet, ts.URL+"/api/plants?system=skin", "asha"))
	if !cards.Results[0].Favorite || cards.Results[1].Favorite {
		t.Errorf("cards = %+v", cards.Results)
	}

	got = decode[toggleResp](t, do(t, http.MethodPost, ts.URL+"/api/favorites/Neem", "asha"))
	if got.Favorite {
		t.Error("second toggle should remove")
	}

	if v := testutil.ToFloat64(srv.metrics.favoriteToggles.WithLabelValues("added")); v != 1 {
		t.Errorf("added toggles = %v", v)
	}
	if v := testutil.ToFloat64(srv.metrics.favoriteToggles.WithLabelValues("removed")); v != 1 {
		t.Errorf("removed toggles = %v", v)
	}
}

// readOnlyKV refuses writes.
type readOnlyKV struct{}

func (readOnlyKV) Get(string) (string, bool, error) { return "", false, nil }
func (readOnlyKV) Set(string, string) error         { return errors.New("read-only") }
func (readOnlyKV) Delete(string) error              { return errors.New("read-only") }

func TestFavoritesPersistFailureIsNonFatal(t *testing.T) {
	_, ts := newTestServer(t, readOnlyKV{})
	resp := do(t, http.MethodPost, ts.URL+"/api/favorites/Tulsi", "asha")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[toggleResp](t, resp)
	if !got.Favorite || got.Persisted || got.Error == "" {
		t.Errorf("toggle = %+v", got)
	}
	favs := decode[favoritesResp](t, do(t, http.MethodGet, ts.URL+"/api/favorites", "asha"))
	if len(favs.Favorites) != 1 {
		t.Errorf("in-memory favorite lost: %+v", favs)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := do(t, http.MethodOptions, ts.URL+"/api/favorites/Neem", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Headers"), UserHeader) {
		t.Error("user header should be allowed")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)
	do(t, http.MethodGet, ts.URL+"/api/plants?mode=plant", "")

	resp := do(t, http.MethodGet, ts.URL+"/metrics", "")
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	for _, want := range []string{
		`herbal_filter_requests_total{mode="plant"} 1`,
		"herbal_catalog_plants 3",
		"herbal_http_request_duration_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestAnonymousReadsAreNotCached(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	for i := 0; i < 3; i++ {
		resp := do(t, http.MethodGet, ts.URL+"/api/plants?q=cold", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
	}
	do(t, http.MethodGet, ts.URL+"/api/plants/Neem", "")

	if n := srv.sessions.Len(); n != 0 {
		t.Errorf("cached sessions = %d, want 0", n)
	}
}

func TestSessionCacheIsBounded(t *testing.T) {
	kv, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	srv := newServer(testPlants(), kv, session.Options{}, 2)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	decode[toggleResp](t, do(t, http.MethodPost, ts.URL+"/api/favorites/Neem", "asha"))
	for _, u := range []string{"ravi", "mira", "kiran"} {
		do(t, http.MethodGet, ts.URL+"/api/plants", u)
	}
	if n := srv.sessions.Len(); n != 2 {
		t.Errorf("cached sessions = %d, want 2", n)
	}

	// asha was evicted; her favorites come back from the store.
	favs := decode[favoritesResp](t, do(t, http.MethodGet, ts.URL+"/api/favorites", "asha"))
	if strings.Join(favs.Favorites, ",") != "Neem" {
		t.Errorf("favorites after eviction = %+v", favs)
	}
}
