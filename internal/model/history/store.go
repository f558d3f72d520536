package history

// Store exposes report history retrieval for HTTP handlers.
type Store interface {
	List() []Report
	FindByID(id string) (Report, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Report
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied reports.
func NewMemoryStore(items []Report) *MemoryStore {
	return &MemoryStore{items: append([]Report(nil), items...)}
}

// List returns a copy of the stored reports.
func (s *MemoryStore) List() []Report {
	return append([]Report(nil), s.items...)
}

// FindByID looks up a report by identifier.
func (s *MemoryStore) FindByID(id string) (Report, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Report{}, false
}
