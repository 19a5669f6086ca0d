package features

import "sync"

// SelectionMode says how a hit feature combines with the current selection.
type SelectionMode int

const (
	SelectReplace SelectionMode = iota // neither modifier
	SelectAdd                          // shift
	SelectToggle                       // ctrl
)

func (m SelectionMode) String() string {
	switch m {
	case SelectReplace:
		return "replace"
	case SelectAdd:
		return "add"
	case SelectToggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// Selection is the set of selected feature IDs, kept in selection order.
type Selection struct {
	mu       sync.RWMutex
	selected map[string]bool
	order    []string
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{selected: make(map[string]bool)}
}

// Apply updates the selection for a hit on id according to mode.
func (s *Selection) Apply(id string, mode SelectionMode) {
	switch mode {
	case SelectAdd:
		s.Select(id)
	case SelectToggle:
		s.Toggle(id)
	default:
		s.mu.Lock()
		s.selected = map[string]bool{id: true}
		s.order = []string{id}
		s.mu.Unlock()
	}
}

// Select adds a feature to the selection.
func (s *Selection) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selected[id] {
		s.selected[id] = true
		s.order = append(s.order, id)
	}
}

// Deselect removes a feature from the selection.
func (s *Selection) Deselect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[id] {
		delete(s.selected, id)
		s.order = removeString(s.order, id)
	}
}

// Toggle flips the selection state of a feature.
func (s *Selection) Toggle(id string) {
	s.mu.RLock()
	on := s.selected[id]
	s.mu.RUnlock()
	if on {
		s.Deselect(id)
	} else {
		s.Select(id)
	}
}

// Clear deselects all features.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]bool)
	s.order = nil
}

// IsSelected reports whether id is selected.
func (s *Selection) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// SelectedIDs returns the selected IDs in the order they were selected.
func (s *Selection) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Count returns the number of selected features.
func (s *Selection) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
