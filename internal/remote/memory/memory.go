package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"finboard/internal/remote"
)

// Store is an in-process remote.Store for development and tests.
type Store struct {
	mu   sync.Mutex
	docs map[string]map[string]map[string]remote.Document
}

func New() *Store {
	return &Store{docs: map[string]map[string]map[string]remote.Document{}}
}

func (s *Store) Put(_ context.Context, userID, collection, id string, doc remote.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.docs[userID]
	if !ok {
		user = map[string]map[string]remote.Document{}
		s.docs[userID] = user
	}
	coll, ok := user[collection]
	if !ok {
		coll = map[string]remote.Document{}
		user[collection] = coll
	}
	coll[id] = maps.Clone(doc)
	return nil
}

func (s *Store) Get(_ context.Context, userID, collection, id string) (remote.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[userID][collection][id]
	if !ok {
		return nil, remote.ErrNotFound
	}
	return maps.Clone(doc), nil
}

// Delete removes a document. Missing documents are not an error.
func (s *Store) Delete(_ context.Context, userID, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs[userID][collection], id)
	return nil
}

// List returns the collection's documents ordered by id.
func (s *Store) List(_ context.Context, userID, collection string) ([]remote.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.docs[userID][collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]remote.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, maps.Clone(coll[id]))
	}
	return out, nil
}

// Len returns the number of documents stored for the user in collection.
func (s *Store) Len(userID, collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[userID][collection])
}
