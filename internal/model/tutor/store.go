package tutor

// Store exposes tutor retrieval for services and HTTP handlers.
type Store interface {
	List() []Tutor
	FindByID(id string) (Tutor, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Tutor
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied tutors.
func NewMemoryStore(items []Tutor) *MemoryStore {
	return &MemoryStore{items: append([]Tutor(nil), items...)}
}

// List returns the tutor catalogue.
func (s *MemoryStore) List() []Tutor {
	return append([]Tutor(nil), s.items...)
}

// FindByID looks up a tutor by identifier.
func (s *MemoryStore) FindByID(id string) (Tutor, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Tutor{}, false
}
