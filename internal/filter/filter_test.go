package filter

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/abelbrown/herbal/internal/catalog"
)

func sampleCatalog() []catalog.Plant {
	return []catalog.Plant{
		{
			Name:      "Tulsi",
			LatinName: "Ocimum tenuiflorum",
			Systems:   []string{"Respiratory", "Nervous"},
			Diseases:  []string{"cold", "stress"},
			PartsUsed: "Leaves",
		},
		{
			Name:      "Neem",
			LatinName: "Azadirachta indica",
			Systems:   []string{"Skin"},
			Diseases:  []string{"acne"},
			PartsUsed: "Bark",
		},
	}
}

func names(plants []catalog.Plant) []string {
	out := []string{}
	for _, p := range plants {
		out = append(out, p.Name)
	}
	return out
}

func TestApplyExamples(t *testing.T) {
	plants := sampleCatalog()
	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{"disease query", State{Mode: ModeDisease, Query: "cold"}, []string{"Tulsi"}},
		{"plant name substring", State{Mode: ModePlant, Query: "tul"}, []string{"Tulsi"}},
		{"system only", State{Mode: ModeDisease, System: "skin"}, []string{"Neem"}},
		{"no constraints", State{Mode: ModeDisease}, []string{"Tulsi", "Neem"}},
		{"disease mode matches systems", State{Mode: ModeDisease, Query: "nerv"}, []string{"Tulsi"}},
		{"plant mode matches latin name", State{Mode: ModePlant, Query: "AZADIR"}, []string{"Neem"}},
		{"plant mode matches parts used", State{Mode: ModePlant, Query: "bark"}, []string{"Neem"}},
		{"plant mode ignores diseases", State{Mode: ModePlant, Query: "cold"}, []string{}},
		{"system and query combine", State{Mode: ModeDisease, Query: "cold", System: "skin"}, []string{}},
		{"system case-insensitive", State{Mode: ModePlant, System: "RESP"}, []string{"Tulsi"}},
		{"zero mode behaves as disease", State{Query: "acne"}, []string{"Neem"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Apply(plants, tt.state))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply(%+v) = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestApplySubstringNotWord(t *testing.T) {
	plants := []catalog.Plant{
		{Name: "A", Diseases: []string{"anxiety"}},
		{Name: "B", Systems: []string{"Pancreas"}},
		{Name: "C", Diseases: []string{"cough"}},
	}
	got := names(Apply(plants, State{Mode: ModeDisease, Query: "an"}))
	if !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("got %v, want [A B]", got)
	}
}

func TestApplyDoesNotTrim(t *testing.T) {
	plants := sampleCatalog()
	if got := Apply(plants, State{Mode: ModePlant, Query: " tulsi"}); len(got) != 0 {
		t.Errorf("leading space should not be trimmed, got %v", names(got))
	}
}

func TestApplyNeverNil(t *testing.T) {
	if got := Apply(nil, State{}); got == nil {
		t.Error("expected empty slice, got nil")
	}
	if got := Apply(sampleCatalog(), State{Query: "zzz"}); got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %#v", got)
	}
}

func TestApplyToleratesMissingLists(t *testing.T) {
	plants := []catalog.Plant{{Name: "Bare"}}
	if got := Apply(plants, State{Query: "x", System: "y"}); len(got) != 0 {
		t.Errorf("expected no match, got %v", names(got))
	}
	if got := Apply(plants, State{}); len(got) != 1 {
		t.Errorf("expected bare record with no constraints, got %v", names(got))
	}
}

var vocabulary = []string{"cold", "Skin", "an", "Nervous", "tul", "pancreas", "", "ROOT", "e"}

func randomCatalog(r *rand.Rand) []catalog.Plant {
	n := r.Intn(8)
	plants := make([]catalog.Plant, n)
	pick := func() string { return vocabulary[r.Intn(len(vocabulary))] }
	for i := range plants {
		plants[i] = catalog.Plant{
			Name:      pick() + string(rune('A'+i)),
			LatinName: pick(),
			PartsUsed: pick(),
			Diseases:  []string{pick(), pick()},
			Systems:   []string{pick()},
		}
	}
	return plants
}

func randomState(r *rand.Rand) State {
	mode := ModeDisease
	if r.Intn(2) == 0 {
		mode = ModePlant
	}
	return State{Mode: mode, Query: vocabulary[r.Intn(len(vocabulary))], System: vocabulary[r.Intn(len(vocabulary))]}
}

func isSubsequence(sub, full []catalog.Plant) bool {
	j := 0
	for i := 0; i < len(full) && j < len(sub); i++ {
		if full[i].Name == sub[j].Name {
			j++
		}
	}
	return j == len(sub)
}

func TestApplyProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		plants := randomCatalog(r)
		state := randomState(r)

		got := Apply(plants, state)
		if !isSubsequence(got, plants) {
			t.Fatalf("result %v is not an ordered subsequence of %v", names(got), names(plants))
		}
		if again := Apply(plants, state); !reflect.DeepEqual(got, again) {
			t.Fatalf("Apply is not deterministic for %+v", state)
		}

		// Mode only matters when there is a query.
		noQuery := State{Mode: state.Mode, System: state.System}
		switched := State{Mode: state.Mode.Other(), System: state.System}
		if !reflect.DeepEqual(names(Apply(plants, noQuery)), names(Apply(plants, switched))) {
			t.Fatalf("mode changed results with empty query: %+v", noQuery)
		}

		if all := Apply(plants, State{Mode: state.Mode}); !reflect.DeepEqual(names(all), names(plants)) {
			t.Fatalf("empty query and system should return the catalog, got %v", names(all))
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"disease": ModeDisease, "Plant": ModePlant, " PLANT ": ModePlant} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("herb"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestModeOtherAndPlaceholder(t *testing.T) {
	if ModeDisease.Other() != ModePlant || ModePlant.Other() != ModeDisease {
		t.Error("Other should flip between the two modes")
	}
	if Placeholder(ModeDisease) == Placeholder(ModePlant) {
		t.Error("placeholders should differ per mode")
	}
}
