// Package npc provides enemy templates, live enemy instances and their behavior state machine.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies an enemy stat table.
type Kind string

const (
	// KindSlime is the basic wandering enemy.
	KindSlime Kind = "slime"
	// KindLargeSlime is a slower, tougher wanderer.
	KindLargeSlime Kind = "large_slime"
	// KindBossSlime is the tier boss; its health scales with the boss tier.
	KindBossSlime Kind = "boss_slime"
	// KindZombie is the advanced enemy that chases the player when close.
	KindZombie Kind = "zombie"
)

// Template is the stat table for one enemy kind.
type Template struct {
	Kind           Kind    `yaml:"kind"`
	Name           string  `yaml:"name"`
	MaxHP          int     `yaml:"max_hp"`
	Size           float64 `yaml:"size"`
	Speed          float64 `yaml:"speed"`
	AttackStrength int     `yaml:"attack_strength"`
	// CanChase enables the Wander -> Chase transition.
	CanChase bool `yaml:"can_chase"`
	// ScalesWithTier multiplies MaxHP by the boss tier (level / 5).
	ScalesWithTier bool `yaml:"scales_with_tier"`
	// LeavesTrail emits a slime trail effect on every heading change.
	LeavesTrail bool `yaml:"leaves_trail"`
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff Kind and Name are non-empty, MaxHP >= 1, Size > 0,
// Speed > 0, and AttackStrength >= 0; otherwise returns an error listing every violation.
func (t *Template) Validate() error {
	var errs []string
	if t.Kind == "" {
		errs = append(errs, "kind must not be empty")
	}
	if t.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if t.MaxHP < 1 {
		errs = append(errs, fmt.Sprintf("max_hp must be >= 1, got %d", t.MaxHP))
	}
	if t.Size <= 0 {
		errs = append(errs, fmt.Sprintf("size must be > 0, got %g", t.Size))
	}
	if t.Speed <= 0 {
		errs = append(errs, fmt.Sprintf("speed must be > 0, got %g", t.Speed))
	}
	if t.AttackStrength < 0 {
		errs = append(errs, fmt.Sprintf("attack_strength must be >= 0, got %d", t.AttackStrength))
	}
	if len(errs) > 0 {
		return fmt.Errorf("enemy template %q: %s", t.Kind, strings.Join(errs, "; "))
	}
	return nil
}

// HealthFor returns the starting health of an instance spawned at the given boss tier.
//
// Postcondition: Returns MaxHP * max(tier, 1) when ScalesWithTier, otherwise MaxHP.
func (t *Template) HealthFor(tier int) int {
	if !t.ScalesWithTier {
		return t.MaxHP
	}
	if tier < 1 {
		tier = 1
	}
	return t.MaxHP * tier
}

// DefaultTemplates returns the built-in stat tables.
//
// Postcondition: Returns one validated template for each of the four kinds.
func DefaultTemplates() []*Template {
	return []*Template{
		{Kind: KindSlime, Name: "Slime", MaxHP: 5, Size: 20, Speed: 2, AttackStrength: 1, LeavesTrail: true},
		{Kind: KindLargeSlime, Name: "Large Slime", MaxHP: 10, Size: 40, Speed: 1.5, AttackStrength: 2, LeavesTrail: true},
		{Kind: KindBossSlime, Name: "Slime King", MaxHP: 20, Size: 80, Speed: 1, AttackStrength: 3, ScalesWithTier: true, LeavesTrail: true},
		{Kind: KindZombie, Name: "Zombie", MaxHP: 5, Size: 20, Speed: 1, AttackStrength: 1, CanChase: true},
	}
}

// LoadTemplateFromBytes parses a single template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates
// sorted by file name.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate failure.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading enemy dir %q: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".yaml") || strings.HasSuffix(entry.Name(), ".yml") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	templates := make([]*Template, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

// Catalog indexes templates by kind.
type Catalog map[Kind]*Template

// NewCatalog builds a Catalog from DefaultTemplates with overrides applied on top.
// A later override for the same kind replaces an earlier one.
//
// Precondition: every override must be non-nil.
// Postcondition: Returns a Catalog containing at least the four built-in kinds,
// or an error if an override fails validation.
func NewCatalog(overrides ...*Template) (Catalog, error) {
	c := make(Catalog)
	for _, t := range DefaultTemplates() {
		c[t.Kind] = t
	}
	for _, t := range overrides {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		c[t.Kind] = t
	}
	return c, nil
}

// Get returns the template for kind.
//
// Postcondition: Returns (tmpl, true) if found, or (nil, false) otherwise.
func (c Catalog) Get(kind Kind) (*Template, bool) {
	t, ok := c[kind]
	return t, ok
}
