// Package memory provides in-process implementations of the repositories.
// They mirror the Mongo queries (owner scoping, sort orders, uniqueness) and
// back STORE=memory as well as tests.
package memory

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskflow/task-manager/internal/core/domain"
)

// Store is the shared state behind the three repositories.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*domain.User
	categories map[string]*domain.Category
	tasks      map[string]*domain.Task
	// seq preserves insertion order for createdAt ties.
	seq     map[string]int
	nextSeq int
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]*domain.User),
		categories: make(map[string]*domain.Category),
		tasks:      make(map[string]*domain.Task),
		seq:        make(map[string]int),
	}
}

func (s *Store) Users() *UserRepository          { return &UserRepository{s: s} }
func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s: s} }
func (s *Store) Tasks() *TaskRepository          { return &TaskRepository{s: s} }

// newID must be called with the write lock held.
func (s *Store) newID() string {
	id := primitive.NewObjectID().Hex()
	s.nextSeq++
	s.seq[id] = s.nextSeq
	return id
}
