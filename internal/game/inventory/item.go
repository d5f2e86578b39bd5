package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cultivation/internal/game/character"
)

// Category classifies item definitions.
type Category string

const (
	CategorySpiritStone Category = "spirit_stone"
	CategoryHerb        Category = "herb"
	CategoryPill        Category = "pill"
	CategoryEquipment   Category = "equipment"
)

var validCategories = map[Category]bool{
	CategorySpiritStone: true,
	CategoryHerb:        true,
	CategoryPill:        true,
	CategoryEquipment:   true,
}

// ItemDef defines the static properties of an item loaded from YAML.
// Effect values are for Common quality and scale with Quality.Multiplier.
type ItemDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    Category `yaml:"category"`
	Stackable   bool     `yaml:"stackable"`
	MaxStack    int      `yaml:"max_stack"`
	Slot        Slot     `yaml:"slot"`
	Effects     []Effect `yaml:"effects"`
	Value       int      `yaml:"value"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validCategories[d.Category] {
		errs = append(errs, fmt.Errorf("Category must be one of spirit_stone, herb, pill, equipment; got %q", d.Category))
	}
	if d.MaxStack < 1 {
		errs = append(errs, errors.New("MaxStack must be >= 1"))
	}
	if d.Category == CategoryEquipment {
		if !validSlots[d.Slot] {
			errs = append(errs, fmt.Errorf("Slot is required for equipment; got %q", d.Slot))
		}
		if d.Stackable {
			errs = append(errs, errors.New("equipment must not be stackable"))
		}
	} else if d.Slot != "" {
		errs = append(errs, fmt.Errorf("Slot %q is only valid for equipment", d.Slot))
	}
	for i, e := range d.Effects {
		if !validEffectTypes[e.Type] {
			errs = append(errs, fmt.Errorf("effects[%d] has unknown type %q", i, e.Type))
		}
		if e.Element != "" {
			if _, err := character.ParseElement(e.Element); err != nil {
				errs = append(errs, fmt.Errorf("effects[%d]: %w", i, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// Item is one concrete stack of an item held by a Store.
type Item struct {
	ID        string   `json:"id"`
	DefID     string   `json:"def_id"`
	Name      string   `json:"name"`
	Category  Category `json:"category"`
	Quality   Quality  `json:"quality"`
	Quantity  int      `json:"quantity"`
	Stackable bool     `json:"stackable"`
	MaxStack  int      `json:"max_stack"`
	Slot      Slot     `json:"slot,omitempty"`
	Effects   []Effect `json:"effects,omitempty"`
}

// Equippable reports whether the item occupies an equipment slot.
func (i Item) Equippable() bool { return i.Slot != "" }

// LoadItems reads all *.yaml and *.yml files from dir, parses each as an
// ItemDef, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*ItemDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var d ItemDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		items = append(items, &d)
	}
	return items, nil
}
