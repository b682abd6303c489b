// Package catalog holds the plant records herbal displays and the sources
// they are loaded from.
package catalog

import "strings"

// DefaultImage is shown for records without an image.
const DefaultImage = "images/default-plant.jpg"

// Plant is one catalog record. Name is unique within a loaded catalog and is
// the key used for favorites and details lookups.
type Plant struct {
	Name        string   `json:"name" yaml:"name"`
	LatinName   string   `json:"latinName" yaml:"latinName"`
	Diseases    []string `json:"diseases" yaml:"diseases"`
	Systems     []string `json:"systems" yaml:"systems"`
	PartsUsed   string   `json:"partsUsed" yaml:"partsUsed"`
	Preparation string   `json:"preparation" yaml:"preparation"`
	Dosage      string   `json:"dosage" yaml:"dosage"`
	Safety      string   `json:"safety" yaml:"safety"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
}

// DetailView is the read-only projection shown in the details overlay.
type DetailView struct {
	Name        string   `json:"name"`
	LatinName   string   `json:"latinName"`
	Image       string   `json:"image"`
	Diseases    []string `json:"diseases"`
	PartsUsed   string   `json:"partsUsed"`
	Preparation string   `json:"preparation"`
	Dosage      string   `json:"dosage"`
	Systems     []string `json:"systems"`
	Safety      string   `json:"safety"`
}

// Details projects p for display, substituting DefaultImage when p has none.
func Details(p Plant) DetailView {
	img := p.Image
	if img == "" {
		img = DefaultImage
	}
	return DetailView{
		Name:        p.Name,
		LatinName:   p.LatinName,
		Image:       img,
		Diseases:    p.Diseases,
		PartsUsed:   p.PartsUsed,
		Preparation: p.Preparation,
		Dosage:      p.Dosage,
		Systems:     p.Systems,
		Safety:      p.Safety,
	}
}

// Find returns the record named name.
func Find(plants []Plant, name string) (Plant, bool) {
	for _, p := range plants {
		if p.Name == name {
			return p, true
		}
	}
	return Plant{}, false
}

// Systems returns the distinct body systems across plants in first-seen
// order. Entries differing only in case are treated as one.
func Systems(plants []Plant) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range plants {
		for _, s := range p.Systems {
			k := strings.ToLower(s)
			if s == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, s)
		}
	}
	return out
}

// Normalize makes records safe to filter: nil lists become empty, records
// without a name are dropped, and a name seen before is dropped (first one
// wins). The dropped duplicate names are returned.
func Normalize(plants []Plant) ([]Plant, []string) {
	out := make([]Plant, 0, len(plants))
	seen := make(map[string]bool, len(plants))
	var dups []string

	for _, p := range plants {
		if p.Name == "" {
			continue
		}
		if seen[p.Name] {
			dups = append(dups, p.Name)
			continue
		}
		seen[p.Name] = true

		if p.Diseases == nil {
			p.Diseases = []string{}
		}
		if p.Systems == nil {
			p.Systems = []string{}
		}
		out = append(out, p)
	}
	return out, dups
}

// Text renders d as plain text, the form copied to the clipboard and
// printed by `herbal show`.
func (d DetailView) Text() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if d.LatinName != "" {
		b.WriteString(" (" + d.LatinName + ")")
	}
	b.WriteString("\n")

	section := func(title, body string) {
		if body == "" {
			body = "-"
		}
		b.WriteString("\n" + title + ": " + body)
	}
	section("Used For", strings.Join(d.Diseases, ", "))
	section("Parts Used", d.PartsUsed)
	section("Preparation", d.Preparation)
	section("Dosage", d.Dosage)
	section("Body Systems", strings.Join(d.Systems, ", "))
	section("Safety Notes", d.Safety)
	section("Image", d.Image)
	b.WriteString("\n")
	return b.String()
}
