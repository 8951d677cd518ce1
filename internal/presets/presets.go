// Package presets loads and saves the pitch-class-set catalog (Forte
// numbers, prime forms, and names) as JSON, following the teacher's
// internal/storage.go convention of a package-level jsoniter codec
// configured for stdlib compatibility.
package presets

import (
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/scoreforge/internal/chordtable"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SetClass is one named pitch-class set entry, identified by its Forte
// number and normalized prime form.
type SetClass struct {
	Forte     string `json:"forte"`
	PrimeForm []int  `json:"primeForm"`
	Name      string `json:"name"`
}

// Catalog indexes a list of SetClass entries by Forte number and by the
// 12-bit mask of their prime form, for fast round-trip identification.
type Catalog struct {
	byForte map[string]SetClass
	byMask  map[chordtable.Mask]SetClass
}

func build(list []SetClass) *Catalog {
	c := &Catalog{byForte: make(map[string]SetClass, len(list)), byMask: make(map[chordtable.Mask]SetClass, len(list))}
	for _, sc := range list {
		c.byForte[sc.Forte] = sc
		c.byMask[chordtable.GetMask(sc.PrimeForm)] = sc
	}
	return c
}

// Load reads a catalog from a JSON file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []SetClass
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return build(list), nil
}

// LoadDefault returns the catalog seeded with the engine's built-in set
// classes, usable without any file on disk.
func LoadDefault() *Catalog { return build(defaultSetClasses) }

// Save writes the catalog back out as JSON, sorted by Forte number for
// a stable diff.
func (c *Catalog) Save(path string) error {
	list := make([]SetClass, 0, len(c.byForte))
	for _, sc := range c.byForte {
		list = append(list, sc)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Forte < list[j].Forte })

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ByForte looks up a set class by its Forte number.
func (c *Catalog) ByForte(forte string) (SetClass, bool) {
	sc, ok := c.byForte[forte]
	return sc, ok
}

// Identify finds the set class whose prime form matches the pitch-class
// mask of pitches, if the catalog has one.
func (c *Catalog) Identify(pitches []int) (SetClass, bool) {
	sc, ok := c.byMask[chordtable.GetMask(pitches)]
	return sc, ok
}

// Add inserts or replaces sc in the catalog.
func (c *Catalog) Add(sc SetClass) {
	c.byForte[sc.Forte] = sc
	c.byMask[chordtable.GetMask(sc.PrimeForm)] = sc
}

// defaultSetClasses seeds the catalog with a handful of common named set
// classes; callers with a fuller Forte-number table can Load one from
// disk instead.
var defaultSetClasses = []SetClass{
	{Forte: "3-11A", PrimeForm: []int{0, 3, 7}, Name: "minor triad"},
	{Forte: "3-11B", PrimeForm: []int{0, 4, 7}, Name: "major triad"},
	{Forte: "3-10", PrimeForm: []int{0, 3, 6}, Name: "diminished triad"},
	{Forte: "3-12", PrimeForm: []int{0, 4, 8}, Name: "augmented triad"},
	{Forte: "4-26", PrimeForm: []int{0, 3, 5, 8}, Name: "minor seventh (no root doubling)"},
	{Forte: "4-27A", PrimeForm: []int{0, 2, 5, 8}, Name: "half-diminished seventh"},
	{Forte: "4-27B", PrimeForm: []int{0, 3, 6, 8}, Name: "dominant seventh"},
	{Forte: "4-19A", PrimeForm: []int{0, 1, 4, 8}, Name: "minor-major seventh"},
	{Forte: "4-20", PrimeForm: []int{0, 1, 5, 8}, Name: "major seventh"},
}
