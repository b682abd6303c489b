package favorites

import (
	"errors"
	"reflect"
	"testing"

	"github.com/abelbrown/herbal/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// flakyKV fails reads or writes on demand.
type flakyKV struct {
	data    map[string]string
	failGet bool
	failSet bool
}

func newFlakyKV() *flakyKV { return &flakyKV{data: map[string]string{}} }

func (f *flakyKV) Get(key string) (string, bool, error) {
	if f.failGet {
		return "", false, errors.New("disk gone")
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *flakyKV) Set(key, value string) error {
	if f.failSet {
		return errors.New("quota exceeded")
	}
	f.data[key] = value
	return nil
}

func (f *flakyKV) Delete(key string) error {
	delete(f.data, key)
	return nil
}

func TestLoadEmptyWhenAbsent(t *testing.T) {
	r, err := Load(openStore(t), "asha")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("expected empty set, got %v", r.Names())
	}
}

func TestLoadEmptyWhenInvalid(t *testing.T) {
	for _, raw := range []string{"not json", `{"a":1}`, `[1,2]`, ""} {
		kv := newFlakyKV()
		kv.data[Key("asha")] = raw
		r, err := Load(kv, "asha")
		if err != nil {
			t.Fatalf("Load(%q): %v", raw, err)
		}
		if r.Len() != 0 {
			t.Errorf("Load(%q) = %v, want empty", raw, r.Names())
		}
	}
}

func TestLoadReadErrorIsNonFatal(t *testing.T) {
	kv := newFlakyKV()
	kv.failGet = true
	r, err := Load(kv, "asha")
	if err == nil {
		t.Fatal("expected read error to be returned")
	}
	if r == nil || r.Len() != 0 {
		t.Fatal("expected usable empty registry")
	}
	if on, _ := r.Toggle("Neem"); !on {
		t.Error("registry should still accept toggles")
	}
}

func TestToggleSurvivesReload(t *testing.T) {
	s := openStore(t)

	r, _ := Load(s, "asha")
	if on, err := r.Toggle("Neem"); err != nil || !on {
		t.Fatalf("Toggle(Neem) = %v, %v", on, err)
	}

	raw, ok, err := s.Get("ayurFavorites_asha")
	if err != nil || !ok {
		t.Fatalf("expected persisted key, got ok=%v err=%v", ok, err)
	}
	if raw != `["Neem"]` {
		t.Errorf("persisted %q, want [\"Neem\"]", raw)
	}

	again, _ := Load(s, "asha")
	if !reflect.DeepEqual(again.Names(), []string{"Neem"}) {
		t.Errorf("reload = %v, want [Neem]", again.Names())
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	s := openStore(t)
	r, _ := Load(s, "asha")
	r.Toggle("Tulsi")
	r.Toggle("Neem")
	if on, _ := r.Toggle("Tulsi"); on {
		t.Error("second toggle should remove")
	}
	if r.IsFavorite("Tulsi") || !r.IsFavorite("Neem") {
		t.Errorf("got %v, want [Neem]", r.Names())
	}
	raw, _, _ := s.Get(Key("asha"))
	if raw != `["Neem"]` {
		t.Errorf("persisted %q", raw)
	}
}

func TestPersistFailureKeepsMemory(t *testing.T) {
	kv := newFlakyKV()
	r, _ := Load(kv, "asha")
	kv.failSet = true

	on, err := r.Toggle("Brahmi")
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if !on || !r.IsFavorite("Brahmi") {
		t.Error("in-memory set should keep the change")
	}
}

func TestUsersAreIsolated(t *testing.T) {
	s := openStore(t)
	a, _ := Load(s, "asha")
	a.Toggle("Amla")
	b, _ := Load(s, "ravi")
	if b.Len() != 0 {
		t.Errorf("ravi sees %v", b.Names())
	}
}

func TestNamesSorted(t *testing.T) {
	r, _ := Load(newFlakyKV(), "asha")
	for _, n := range []string{"Tulsi", "Amla", "Neem"} {
		r.Toggle(n)
	}
	if got := r.Names(); !reflect.DeepEqual(got, []string{"Amla", "Neem", "Tulsi"}) {
		t.Errorf("Names = %v", got)
	}
}
