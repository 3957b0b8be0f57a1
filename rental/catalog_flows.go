package rental

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CatalogService runs the interactive category and tool type workflows.
type CatalogService struct {
	catalog *Catalog
	inUse   func(typeID uuid.UUID) bool
	deps    Deps
}

// NewCatalogService wires the service. inUse reports whether a tool type is
// still held by a booking; nil means never.
func NewCatalogService(cat *Catalog, inUse func(uuid.UUID) bool, deps Deps) *CatalogService {
	if inUse == nil {
		inUse = func(uuid.UUID) bool { return false }
	}
	return &CatalogService{catalog: cat, inUse: inUse, deps: deps.withDefaults()}
}

func (s *CatalogService) cancelled() (Outcome, error) {
	s.deps.Prompt.Notify("Operation cancelled.")
	return OutcomeCancelled, nil
}

// ListCategories prints every category with its tool types.
func (s *CatalogService) ListCategories() []*ToolCategory {
	p := s.deps.Prompt
	cats := s.catalog.Categories()
	if len(cats) == 0 {
		p.Notify("No tool categories.")
		return nil
	}
	for _, c := range cats {
		p.Notify("- %s", RenderCategory(c))
		if len(c.Types) == 0 {
			p.Notify("   (no tools)")
		}
		for _, t := range c.Types {
			p.Notify("   -> %s", RenderType(t))
		}
	}
	return cats
}

// askCategory re-asks until an existing category name is entered.
func (s *CatalogService) askCategory(prompt string) (*ToolCategory, bool) {
	p := s.deps.Prompt
	for _, c := range s.catalog.Categories() {
		p.Notify("- %s", c.Name)
	}
	for {
		name := p.Text(prompt, "")
		if name.Cancelled {
			return nil, false
		}
		cat, err := s.catalog.Category(name.Value)
		if err == nil {
			return cat, true
		}
		p.Notify("Category not found, please try again.")
	}
}

// AddCategory creates a category and optionally adds a first tool type to it.
func (s *CatalogService) AddCategory() (Outcome, error) {
	p := s.deps.Prompt
	for _, c := range s.catalog.Categories() {
		p.Notify("- %s", c.Name)
	}

	var name string
	for {
		a := p.Text("Category name: ", "")
		if a.Cancelled {
			return s.cancelled()
		}
		name = strings.TrimSpace(a.Value)
		if name == "" {
			p.Notify("Name must not be empty.")
			continue
		}
		if _, err := s.catalog.Category(name); err == nil {
			p.Notify("A category with this name already exists.")
			continue
		}
		break
	}
	day := p.Money("Day rate (€): ", nil)
	if day.Cancelled {
		return s.cancelled()
	}
	week := p.Money("Week rate (€): ", nil)
	if week.Cancelled {
		return s.cancelled()
	}
	insured := p.Confirm("Insurance required? (y/n): ", nil)
	if insured.Cancelled {
		return s.cancelled()
	}

	cat := &ToolCategory{Name: name, DayRate: day.Value, WeekRate: week.Value, InsuranceRequired: insured.Value}
	if err := s.catalog.AddCategory(cat); err != nil {
		return OutcomeDiscarded, err
	}
	s.deps.Log.Info("category added", "category_id", cat.ID, "name", cat.Name)
	p.Notify("Category added.")

	more := p.Confirm("Add a tool to the new category now? (y/n): ", nil)
	if more.Cancelled || !more.Value {
		return OutcomeCommitted, nil
	}
	if _, err := s.addTypeTo(cat); err != nil {
		p.Notify("Tool not added: %v", err)
	}
	return OutcomeCommitted, nil
}

// EditCategory changes name, tariff or insurance flag; blank input keeps a field.
func (s *CatalogService) EditCategory() (Outcome, error) {
	p := s.deps.Prompt
	if len(s.catalog.Categories()) == 0 {
		return OutcomeEmpty, fmt.Errorf("no categories: %w", ErrPrecondition)
	}
	cat, ok := s.askCategory("Category to edit: ")
	if !ok {
		return s.cancelled()
	}
	p.Notify("Editing category %s", cat.Name)

	var name string
	for {
		a := p.Text(fmt.Sprintf("Name [%s]: ", cat.Name), cat.Name)
		if a.Cancelled {
			return s.cancelled()
		}
		name = strings.TrimSpace(a.Value)
		if other, err := s.catalog.Category(name); err == nil && other.ID != cat.ID {
			p.Notify("A category with this name already exists.")
			continue
		}
		break
	}
	day := p.Money(fmt.Sprintf("Day rate [%s]: ", cat.DayRate), &cat.DayRate)
	if day.Cancelled {
		return s.cancelled()
	}
	week := p.Money(fmt.Sprintf("Week rate [%s]: ", cat.WeekRate), &cat.WeekRate)
	if week.Cancelled {
		return s.cancelled()
	}
	insured := p.Confirm("Insurance required? (y/n, Enter = keep): ", &cat.InsuranceRequired)
	if insured.Cancelled {
		return s.cancelled()
	}

	if err := s.catalog.UpdateCategory(cat.ID, name, day.Value, week.Value, insured.Value); err != nil {
		return OutcomeDiscarded, err
	}
	s.deps.Log.Info("category updated", "category_id", cat.ID)
	p.Notify("Category updated.")
	return OutcomeCommitted, nil
}

// DeleteCategory removes a category with all of its tool types after a
// warning and confirmation. Categories whose tools are booked stay.
func (s *CatalogService) DeleteCategory() (Outcome, error) {
	p := s.deps.Prompt
	if len(s.catalog.Categories()) == 0 {
		return OutcomeEmpty, fmt.Errorf("no categories: %w", ErrPrecondition)
	}
	cat, ok := s.askCategory("Category to delete: ")
	if !ok {
		return s.cancelled()
	}
	for _, t := range cat.Types {
		if s.inUse(t.ID) {
			return OutcomeDiscarded, fmt.Errorf("%s in category %q is still booked: %w", t.Label(), cat.Name, ErrConflict)
		}
	}
	if n := len(cat.Types); n > 0 {
		p.Notify("Category '%s' contains %d tool type(s). They will be deleted as well.", cat.Name, n)
	}
	confirm := p.Confirm(fmt.Sprintf("Really delete category '%s'? (y/n): ", cat.Name), nil)
	if confirm.Cancelled {
		return s.cancelled()
	}
	if !confirm.Value {
		p.Notify("Category was not deleted.")
		return OutcomeDiscarded, nil
	}
	if err := s.catalog.RemoveCategory(cat.ID); err != nil {
		return OutcomeDiscarded, err
	}
	s.deps.Log.Info("category deleted", "category_id", cat.ID, "types", len(cat.Types))
	p.Notify("Category deleted.")
	return OutcomeCommitted, nil
}

// AddType asks for a category and the data of a new tool type.
func (s *CatalogService) AddType() (Outcome, error) {
	if len(s.catalog.Categories()) == 0 {
		return OutcomeEmpty, fmt.Errorf("no categories: %w", ErrPrecondition)
	}
	s.ListCategories()
	cat, ok := s.askCategory("Category: ")
	if !ok {
		return s.cancelled()
	}
	return s.addTypeTo(cat)
}

func (s *CatalogService) addTypeTo(cat *ToolCategory) (Outcome, error) {
	p := s.deps.Prompt
	manufacturer := p.Text("Manufacturer: ", "")
	if manufacturer.Cancelled {
		return s.cancelled()
	}
	model := p.Text("Model: ", "")
	if model.Cancelled {
		return s.cancelled()
	}
	if owner := s.catalog.OwnerOf(manufacturer.Value, model.Value, cat.ID); owner != nil {
		return OutcomeDiscarded, fmt.Errorf("%s %s is already listed in category %q: %w",
			strings.TrimSpace(manufacturer.Value), strings.TrimSpace(model.Value), owner.Name, ErrConflict)
	}
	spec := p.Text("Technical data: ", "")
	if spec.Cancelled {
		return s.cancelled()
	}
	capacity := p.Int("Number of units: ", 1, 1000)
	if capacity.Cancelled {
		return s.cancelled()
	}

	t := &ToolType{Manufacturer: manufacturer.Value, Model: model.Value, Spec: spec.Value, Capacity: capacity.Value}
	if err := s.catalog.AddType(cat.ID, t); err != nil {
		return OutcomeDiscarded, err
	}
	s.deps.Log.Info("tool type added", "type_id", t.ID, "category_id", cat.ID, "capacity", t.Capacity)
	p.Notify("%d unit(s) of %s added.", t.Capacity, t.Label())
	return OutcomeCommitted, nil
}

// EditType changes manufacturer, model or technical data of a tool type.
func (s *CatalogService) EditType() (Outcome, error) {
	p := s.deps.Prompt
	if len(s.catalog.Types()) == 0 {
		return OutcomeEmpty, fmt.Errorf("no tools: %w", ErrPrecondition)
	}
	var cat *ToolCategory
	for {
		c, ok := s.askCategory("Category: ")
		if !ok {
			return s.cancelled()
		}
		if len(c.Types) > 0 {
			cat = c
			break
		}
		p.Notify("This category has no tools, please choose another one.")
	}
	for i, t := range cat.Types {
		p.Notify("%d. %s", i+1, RenderType(t))
	}
	idx := p.Int("Tool number: ", 1, len(cat.Types))
	if idx.Cancelled {
		return s.cancelled()
	}
	t := cat.Types[idx.Value-1]
	p.Notify("Editing %s", RenderType(t))

	manufacturer := p.Text(fmt.Sprintf("Manufacturer [%s]: ", t.Manufacturer), t.Manufacturer)
	if manufacturer.Cancelled {
		return s.cancelled()
	}
	model := p.Text(fmt.Sprintf("Model [%s]: ", t.Model), t.Model)
	if model.Cancelled {
		return s.cancelled()
	}
	spec := p.Text(fmt.Sprintf("Technical data [%s]: ", t.Spec), t.Spec)
	if spec.Cancelled {
		return s.cancelled()
	}
	if err := s.catalog.UpdateType(t.ID, manufacturer.Value, model.Value, spec.Value); err != nil {
		return OutcomeDiscarded, err
	}
	s.deps.Log.Info("tool type updated", "type_id", t.ID)
	p.Notify("Tool updated.")
	return OutcomeCommitted, nil
}

// DeleteType removes a tool type that no booking holds.
func (s *CatalogService) DeleteType() (Outcome, error) {
	p := s.deps.Prompt
	entries := s.catalog.Entries()
	if len(entries) == 0 {
		return OutcomeEmpty, fmt.Errorf("no tools: %w", ErrPrecondition)
	}
	for i, e := range entries {
		p.Notify("%d. %s (category: %s)", i+1, RenderType(e.Type), e.Category.Name)
	}
	idx := p.Int("Tool number to delete: ", 1, len(entries))
	if idx.Cancelled {
		return s.cancelled()
	}
	e := entries[idx.Value-1]
	if s.inUse(e.Type.ID) {
		return OutcomeDiscarded, fmt.Errorf("%s is still booked: %w", e.Type.Label(), ErrConflict)
	}
	confirm := p.Confirm(fmt.Sprintf("Really delete '%s' from category '%s'? (y/n): ", e.Type.Label(), e.Category.Name), nil)
	if confirm.Cancelled {
		return s.cancelled()
	}
	if !confirm.Value {
		p.Notify("Tool was not deleted.")
		return OutcomeDiscarded, nil
	}
	if err := s.catalog.RemoveType(e.Type.ID); err != nil {
		return OutcomeDiscarded, err
	}
	s.deps.Log.Info("tool type deleted", "type_id", e.Type.ID)
	p.Notify("Tool deleted.")
	return OutcomeCommitted, nil
}

// ListTypes prints all tool types grouped by manufacturer and sorted by model.
func (s *CatalogService) ListTypes() []TypeEntry {
	p := s.deps.Prompt
	entries := ByManufacturer(s.catalog.Entries())
	if len(entries) == 0 {
		p.Notify("No tools.")
		return nil
	}
	p.Notify("All tools (by manufacturer and model):")
	last := ""
	for _, e := range entries {
		if !strings.EqualFold(e.Type.Manufacturer, last) {
			last = e.Type.Manufacturer
			p.Notify("Manufacturer: %s", last)
		}
		p.Notify("   -> %s (category: %s)", RenderType(e.Type), e.Category.Name)
	}
	return entries
}
