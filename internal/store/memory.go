package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/quizvault/quizvault/internal/quiz"
)

// MemoryStore is the Store used by tests and throwaway runs. Same
// overwrite-by-id semantics as the SQL store.
type MemoryStore struct {
	mu      sync.RWMutex
	quizzes map[string]quiz.Quiz
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quizzes: map[string]quiz.Quiz{}}
}

func (m *MemoryStore) Put(_ context.Context, z quiz.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[z.ID] = z
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (quiz.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.quizzes[id]
	if !ok {
		return quiz.Quiz{}, ErrNotFound
	}
	return z, nil
}

func (m *MemoryStore) GetAll(_ context.Context) ([]quiz.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]quiz.Quiz, 0, len(m.quizzes))
	for _, z := range m.quizzes {
		out = append(out, z)
	}
	sortQuizzes(out)
	return out, nil
}

func (m *MemoryStore) GetAllByField(_ context.Context, field, value string) ([]quiz.Quiz, error) {
	if _, ok := filterableFields[field]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrBadField, field)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []quiz.Quiz
	for _, z := range m.quizzes {
		if fieldValue(z, field) == value {
			out = append(out, z)
		}
	}
	sortQuizzes(out)
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrNotFound
	}
	delete(m.quizzes, id)
	return nil
}

func fieldValue(z quiz.Quiz, field string) string {
	switch field {
	case "notebook":
		return z.Notebook
	case "section":
		return z.Section
	case "part":
		return z.Part
	case "title":
		return z.Title
	case "sourceHash":
		return z.SourceHash
	default:
		return ""
	}
}

func sortQuizzes(qs []quiz.Quiz) {
	sort.Slice(qs, func(i, j int) bool {
		if qs[i].CreatedAt != qs[j].CreatedAt {
			return qs[i].CreatedAt < qs[j].CreatedAt
		}
		return qs[i].ID < qs[j].ID
	})
}
