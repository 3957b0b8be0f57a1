package rental

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Catalog holds the tool categories and answers lookups across them.
type Catalog struct {
	categories []*ToolCategory
}

// NewCatalog wraps loaded categories and re-links every type to its owner.
func NewCatalog(categories []*ToolCategory) *Catalog {
	c := &Catalog{categories: categories}
	for _, cat := range c.categories {
		for _, t := range cat.Types {
			t.CategoryID = cat.ID
		}
	}
	return c
}

// Categories returns the categories in insertion order.
func (c *Catalog) Categories() []*ToolCategory { return c.categories }

// Category looks a category up by name, ignoring case.
func (c *Catalog) Category(name string) (*ToolCategory, error) {
	name = strings.TrimSpace(name)
	for _, cat := range c.categories {
		if strings.EqualFold(cat.Name, name) {
			return cat, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
}

// CategoryByID returns nil when no category has the id.
func (c *Catalog) CategoryByID(id uuid.UUID) *ToolCategory {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat
		}
	}
	return nil
}

// Type returns the tool type with the id and its owning category.
func (c *Catalog) Type(id uuid.UUID) (*ToolType, *ToolCategory) {
	for _, cat := range c.categories {
		for _, t := range cat.Types {
			if t.ID == id {
				return t, cat
			}
		}
	}
	return nil, nil
}

// Types flattens all tool types of all categories.
func (c *Catalog) Types() []*ToolType {
	var out []*ToolType
	for _, cat := range c.categories {
		out = append(out, cat.Types...)
	}
	return out
}

// AddCategory validates and appends a new category. Names are unique ignoring case.
func (c *Catalog) AddCategory(cat *ToolCategory) error {
	cat.Name = strings.TrimSpace(cat.Name)
	if err := validateEntity("category", cat); err != nil {
		return err
	}
	if existing, err := c.Category(cat.Name); err == nil && existing != cat {
		return fmt.Errorf("category %q already exists: %w", cat.Name, ErrConflict)
	}
	if cat.ID == uuid.Nil {
		cat.ID = uuid.New()
	}
	for _, t := range cat.Types {
		t.CategoryID = cat.ID
	}
	c.categories = append(c.categories, cat)
	return nil
}

// UpdateCategory replaces name, tariff and insurance flag of an existing category.
func (c *Catalog) UpdateCategory(id uuid.UUID, name string, day, week Cents, insured bool) error {
	cat := c.CategoryByID(id)
	if cat == nil {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	name = strings.TrimSpace(name)
	if other, err := c.Category(name); err == nil && other.ID != id {
		return fmt.Errorf("category %q already exists: %w", name, ErrConflict)
	}
	next := *cat
	next.Name, next.DayRate, next.WeekRate, next.InsuranceRequired = name, day, week, insured
	if err := validateEntity("category", &next); err != nil {
		return err
	}
	*cat = next
	return nil
}

// RemoveCategory deletes a category together with its tool types.
func (c *Catalog) RemoveCategory(id uuid.UUID) error {
	for i, cat := range c.categories {
		if cat.ID == id {
			c.categories = append(c.categories[:i], c.categories[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", id, ErrNotFound)
}

// OwnerOf returns the category other than exclude that already lists the
// manufacturer/model pair, or nil.
func (c *Catalog) OwnerOf(manufacturer, model string, exclude uuid.UUID) *ToolCategory {
	for _, cat := range c.categories {
		if cat.ID == exclude {
			continue
		}
		for _, t := range cat.Types {
			if strings.EqualFold(t.Manufacturer, manufacturer) && strings.EqualFold(t.Model, model) {
				return cat
			}
		}
	}
	return nil
}

// AddType validates the type and appends it to the category. A manufacturer
// and model pair belongs to exactly one category.
func (c *Catalog) AddType(categoryID uuid.UUID, t *ToolType) error {
	cat := c.CategoryByID(categoryID)
	if cat == nil {
		return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	t.Manufacturer, t.Model, t.Spec = strings.TrimSpace(t.Manufacturer), strings.TrimSpace(t.Model), strings.TrimSpace(t.Spec)
	if err := validateEntity("tool type", t); err != nil {
		return err
	}
	if owner := c.OwnerOf(t.Manufacturer, t.Model, cat.ID); owner != nil {
		return fmt.Errorf("%s already belongs to category %q: %w", t.Label(), owner.Name, ErrConflict)
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CategoryID = cat.ID
	cat.Types = append(cat.Types, t)
	return nil
}

// UpdateType replaces the descriptive fields of a tool type.
func (c *Catalog) UpdateType(id uuid.UUID, manufacturer, model, spec string) error {
	t, cat := c.Type(id)
	if t == nil {
		return fmt.Errorf("tool type %s: %w", id, ErrNotFound)
	}
	next := *t
	next.Manufacturer, next.Model, next.Spec = strings.TrimSpace(manufacturer), strings.TrimSpace(model), strings.TrimSpace(spec)
	if err := validateEntity("tool type", &next); err != nil {
		return err
	}
	if owner := c.OwnerOf(next.Manufacturer, next.Model, cat.ID); owner != nil {
		return fmt.Errorf("%s already belongs to category %q: %w", next.Label(), owner.Name, ErrConflict)
	}
	*t = next
	return nil
}

// RemoveType deletes a tool type from its category.
func (c *Catalog) RemoveType(id uuid.UUID) error {
	for _, cat := range c.categories {
		for i, t := range cat.Types {
			if t.ID == id {
				cat.Types = append(cat.Types[:i], cat.Types[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("tool type %s: %w", id, ErrNotFound)
}

// TypeGroup collects the tool types sold as the same item (same manufacturer
// and model) inside one category.
type TypeGroup struct {
	Manufacturer string
	Model        string
	Types        []*ToolType
}

// Label is the item name of the group.
func (g TypeGroup) Label() string { return g.Manufacturer + " " + g.Model }

// Capacity sums the unit pools of the grouped types.
func (g TypeGroup) Capacity() int {
	n := 0
	for _, t := range g.Types {
		n += t.Capacity
	}
	return n
}

// Groups groups a category's types by manufacturer and model, ignoring case,
// and keeps the order and spelling in which each item first appears.
func Groups(cat *ToolCategory) []TypeGroup {
	var groups []TypeGroup
	index := map[[2]string]int{}
	for _, t := range cat.Types {
		key := [2]string{strings.ToLower(t.Manufacturer), strings.ToLower(t.Model)}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, TypeGroup{Manufacturer: t.Manufacturer, Model: t.Model})
		}
		groups[i].Types = append(groups[i].Types, t)
	}
	return groups
}

// TypeEntry pairs a tool type with its category for listings.
type TypeEntry struct {
	Type     *ToolType
	Category *ToolCategory
}

// Entries lists every tool type with its category in catalog order.
func (c *Catalog) Entries() []TypeEntry {
	var out []TypeEntry
	for _, cat := range c.categories {
		for _, t := range cat.Types {
			out = append(out, TypeEntry{Type: t, Category: cat})
		}
	}
	return out
}

// ByManufacturer sorts entries by manufacturer, then model, ignoring case.
func ByManufacturer(entries []TypeEntry) []TypeEntry {
	out := append([]TypeEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Type.Manufacturer), strings.ToLower(out[j].Type.Manufacturer)
		if a != b {
			return a < b
		}
		return strings.ToLower(out[i].Type.Model) < strings.ToLower(out[j].Type.Model)
	})
	return out
}
