package character

import "fmt"

// Registry is an immutable character lookup table. It is built once by an
// explicit initialization step and passed into the simulation constructor;
// there is no process-wide mutable registration.
type Registry struct {
	byID map[string]*Character
	ids  []string
}

// NewRegistry builds a Registry from validated characters.
//
// Precondition: every character must already have passed Validate (the
// loaders guarantee this).
// Postcondition: returns an error on duplicate IDs; the registry is
// immutable afterwards.
func NewRegistry(chars []*Character) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Character, len(chars))}
	for _, ch := range chars {
		if _, dup := r.byID[ch.ID]; dup {
			return nil, fmt.Errorf("character registry: duplicate id %q", ch.ID)
		}
		r.byID[ch.ID] = ch
		r.ids = append(r.ids, ch.ID)
	}
	return r, nil
}

// ByID returns the character with the given id.
func (r *Registry) ByID(id string) (*Character, bool) {
	ch, ok := r.byID[id]
	return ch, ok
}

// IDs returns the registered character ids in registration order.
func (r *Registry) IDs() []string {
	cp := make([]string, len(r.ids))
	copy(cp, r.ids)
	return cp
}

// Count returns the number of registered characters.
func (r *Registry) Count() int { return len(r.byID) }
