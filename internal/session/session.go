// Package session holds the state of one herbal viewing session: the loaded
// catalog, the active filter, the derived visible list, the signed-in user's
// favorites and the theme flag.
//
// Every mutation recomputes the visible list before it returns, so Visible
// always agrees with State. Persistence failures are reported through the
// event logger and returned, never rolled back.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/herbal/internal/catalog"
	"github.com/abelbrown/herbal/internal/favorites"
	"github.com/abelbrown/herbal/internal/filter"
	"github.com/abelbrown/herbal/internal/otel"
	"github.com/abelbrown/herbal/internal/store"
)

// DarkModeKey stores the theme flag. It is shared by all users.
const DarkModeKey = "darkMode"

// DefaultCardDiseases is how many diseases a card lists.
const DefaultCardDiseases = 4

// Options tunes a new Session.
type Options struct {
	Mode         filter.Mode // initial mode; zero means disease
	CardDiseases int         // diseases shown per card; <= 0 means DefaultCardDiseases
	DarkDefault  bool        // theme when nothing is stored
	Log          *otel.Logger
}

// Card is the display projection of one visible record.
type Card struct {
	Name          string   `json:"name"`
	LatinName     string   `json:"latinName"`
	Diseases      []string `json:"diseases"`
	Systems       []string `json:"systems"`
	Favorite      bool     `json:"favorite"`
	FavoriteLabel string   `json:"favoriteLabel"`
}

// Session is not safe for concurrent use; callers serialize mutations.
type Session struct {
	kv      store.KV
	log     *otel.Logger
	plants  []catalog.Plant
	systems []string

	state   filter.State
	visible []catalog.Plant
	favs    *favorites.Registry
	dark    bool
	cardDis int
}

// New starts a session for user over plants. Favorites and the theme flag
// are read once here; read failures are logged and fall back to empty
// favorites and the default theme.
func New(plants []catalog.Plant, kv store.KV, user string, opts Options) *Session {
	if plants == nil {
		plants = []catalog.Plant{}
	}
	mode := opts.Mode
	if mode != filter.ModePlant {
		mode = filter.ModeDisease
	}
	cardDis := opts.CardDiseases
	if cardDis <= 0 {
		cardDis = DefaultCardDiseases
	}

	s := &Session{
		kv:      kv,
		log:     opts.Log,
		plants:  plants,
		systems: catalog.Systems(plants),
		state:   filter.State{Mode: mode},
		cardDis: cardDis,
	}

	favs, err := favorites.Load(kv, user)
	if err != nil {
		s.log.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindFavoritesError, Comp: "session", User: user, Err: err.Error()})
	}
	s.favs = favs

	s.dark = opts.DarkDefault
	raw, ok, err := kv.Get(DarkModeKey)
	switch {
	case err != nil:
		s.log.Error(otel.KindStoreError, "session", fmt.Errorf("read theme: %w", err))
	case ok:
		s.dark = raw == "true"
	}

	s.recompute()
	return s
}

func (s *Session) recompute() {
	start := time.Now()
	s.visible = filter.Apply(s.plants, s.state)
	if otel.TraceEnabled() {
		s.log.Emit(otel.Event{
			Level:  otel.LevelDebug,
			Kind:   otel.KindFilterApply,
			Comp:   "session",
			Mode:   string(s.state.Mode),
			Query:  s.state.Query,
			System: s.state.System,
			Count:  len(s.visible),
			Dur:    time.Since(start),
		})
	}
}

// State returns the current filter inputs.
func (s *Session) State() filter.State { return s.state }

// User returns the signed-in user the favorites belong to.
func (s *Session) User() string { return s.favs.User() }

// Plants returns the full catalog.
func (s *Session) Plants() []catalog.Plant { return s.plants }

// Systems returns the distinct body systems offered by the system filter.
func (s *Session) Systems() []string { return s.systems }

// Visible returns the records passing the current filter, in catalog order.
func (s *Session) Visible() []catalog.Plant { return s.visible }

// SetQuery replaces the query. Surrounding whitespace is dropped, as typed
// input is.
func (s *Session) SetQuery(q string) {
	s.state.Query = strings.TrimSpace(q)
	s.recompute()
}

// ClearQuery empties the query.
func (s *Session) ClearQuery() {
	s.state.Query = ""
	s.recompute()
}

// SetSystem restricts results to records whose systems contain system.
func (s *Session) SetSystem(system string) {
	s.state.System = system
	s.recompute()
}

// ResetSystem removes the system restriction.
func (s *Session) ResetSystem() {
	s.state.System = ""
	s.recompute()
}

// SetMode switches the matching rule. Query and system are kept.
func (s *Session) SetMode(mode filter.Mode) {
	if mode != filter.ModePlant {
		mode = filter.ModeDisease
	}
	if mode == s.state.Mode {
		return
	}
	s.state.Mode = mode
	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindModeSwitch, Comp: "session", Mode: string(mode)})
	s.recompute()
}

// IsFavorite reports whether name is one of the user's favorites.
func (s *Session) IsFavorite(name string) bool { return s.favs.IsFavorite(name) }

// Favorites returns the user's favorites, sorted.
func (s *Session) Favorites() []string { return s.favs.Names() }

// ToggleFavorite flips name's membership and persists the set. The returned
// error is for reporting only; the in-memory change stands.
func (s *Session) ToggleFavorite(name string) (bool, error) {
	on, err := s.favs.Toggle(name)
	s.recompute()
	if err != nil {
		s.log.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindFavoritesError, Comp: "session", User: s.User(), Plant: name, Err: err.Error()})
		return on, err
	}
	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFavoriteToggle, Comp: "session", User: s.User(), Plant: name, Msg: fmt.Sprintf("favorite=%t", on)})
	return on, nil
}

// Cards projects the visible records for display.
func (s *Session) Cards() []Card {
	cards := make([]Card, 0, len(s.visible))
	for _, p := range s.visible {
		cards = append(cards, s.card(p))
	}
	return cards
}

func (s *Session) card(p catalog.Plant) Card {
	diseases := p.Diseases
	if len(diseases) > s.cardDis {
		diseases = diseases[:s.cardDis]
	}
	fav := s.favs.IsFavorite(p.Name)
	return Card{
		Name:          p.Name,
		LatinName:     p.LatinName,
		Diseases:      diseases,
		Systems:       p.Systems,
		Favorite:      fav,
		FavoriteLabel: FavoriteLabel(fav),
	}
}

// FavoriteLabel is the action text for a card's favorite control.
func FavoriteLabel(fav bool) string {
	if fav {
		return "Remove from favorites"
	}
	return "Add to favorites"
}

// Details looks name up in the full catalog, not just the visible list.
// An unknown name reports false and changes nothing.
func (s *Session) Details(name string) (catalog.DetailView, bool) {
	p, ok := catalog.Find(s.plants, name)
	if !ok {
		s.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindDetailsNotFound, Comp: "session", Plant: name})
		return catalog.DetailView{}, false
	}
	s.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindDetailsOpen, Comp: "session", Plant: name})
	return catalog.Details(p), true
}

// Dark reports whether the dark theme is active.
func (s *Session) Dark() bool { return s.dark }

// ToggleTheme flips the theme and persists it. The flag flips even when the
// write fails.
func (s *Session) ToggleTheme() (bool, error) {
	s.dark = !s.dark
	err := s.kv.Set(DarkModeKey, fmt.Sprintf("%t", s.dark))
	if err != nil {
		err = fmt.Errorf("save theme: %w", err)
		s.log.Error(otel.KindStoreError, "session", err)
	}
	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindThemeToggle, Comp: "session", Msg: fmt.Sprintf("dark=%t", s.dark)})
	return s.dark, err
}
