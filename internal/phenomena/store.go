package phenomena

import (
	"sync"

	"github.com/ppiankov/hotbild/internal/model"
)

// Store holds the session's phenomena model. Import replaces it atomically:
// a rejected document leaves the previous model untouched.
type Store struct {
	mu    sync.RWMutex
	model model.Phenomena
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{model: model.Phenomena{
		Phenomena: []model.Phenomenon{},
		Links:     []model.PhenomenonLink{},
	}}
}

// Snapshot returns a copy of the current model
func (s *Store) Snapshot() model.Phenomena {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.model)
}

// Replace sets the model
func (s *Store) Replace(m model.Phenomena) {
	m = clone(m)
	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
}

// Import parses data and swaps it in on success
func (s *Store) Import(data []byte) error {
	m, err := Parse(data)
	if err != nil {
		return err
	}
	s.Replace(m)
	return nil
}

// Export encodes the current model
func (s *Store) Export() ([]byte, error) {
	return Export(s.Snapshot())
}

// Len returns the number of phenomena
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.model.Phenomena)
}

func clone(m model.Phenomena) model.Phenomena {
	return model.Phenomena{
		Phenomena: append([]model.Phenomenon{}, m.Phenomena...),
		Links:     append([]model.PhenomenonLink{}, m.Links...),
	}
}
