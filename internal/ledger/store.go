// Package ledger owns the transaction collection for one working session.
// The store is the only mutable state in the engine: every derived structure
// (trial balance, statements, audit findings) is recomputed from it.
package ledger

import (
	"sort"
	"sync"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
)

// ChangeHook is invoked synchronously after every mutating operation, with
// the store version the mutation produced. Hooks run outside the store lock,
// so they may read the store freely.
type ChangeHook func(version uint64)

// Store is an in-memory, session-scoped transaction collection. It is safe
// for concurrent use and returns copies, never internal slices.
type Store struct {
	mu      sync.RWMutex
	txs     []domain.Transaction
	index   map[string]int
	version uint64
	hooks   []ChangeHook
}

// NewStore creates an empty store at version zero.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// OnChange registers a hook invoked after every mutation. Registration is
// expected during wiring, before concurrent use begins.
func (s *Store) OnChange(h ChangeHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Add appends a transaction. A duplicate id replaces the existing entry in
// place so editing UIs can upsert without racing Remove.
func (s *Store) Add(tx domain.Transaction) {
	s.mu.Lock()
	if i, ok := s.index[tx.ID]; ok {
		s.txs[i] = tx
	} else {
		s.index[tx.ID] = len(s.txs)
		s.txs = append(s.txs, tx)
	}
	version := s.bump()
	hooks := s.hooks
	s.mu.Unlock()

	notify(hooks, version)
}

// ReplaceAll swaps the entire collection, preserving the given order as the
// new insertion order.
func (s *Store) ReplaceAll(txs []domain.Transaction) {
	s.mu.Lock()
	s.txs = make([]domain.Transaction, len(txs))
	copy(s.txs, txs)
	s.index = make(map[string]int, len(txs))
	for i, tx := range s.txs {
		s.index[tx.ID] = i
	}
	version := s.bump()
	hooks := s.hooks
	s.mu.Unlock()

	notify(hooks, version)
}

// Update merges a patch into the transaction with the given id. A missing id
// or an empty patch is a no-op and does not bump the version; editing UIs
// may race harmlessly with deletions.
func (s *Store) Update(id string, patch domain.Patch) bool {
	if patch.IsZero() {
		return false
	}

	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.txs[i] = patch.Apply(s.txs[i])
	version := s.bump()
	hooks := s.hooks
	s.mu.Unlock()

	notify(hooks, version)
	return true
}

// Remove deletes the transaction with the given id. A missing id is a no-op.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.txs = append(s.txs[:i], s.txs[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.txs); j++ {
		s.index[s.txs[j].ID] = j
	}
	version := s.bump()
	hooks := s.hooks
	s.mu.Unlock()

	notify(hooks, version)
	return true
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// SortedByDate returns a copy sorted by date ascending. The sort is stable:
// entries on the same date keep their insertion order.
func (s *Store) SortedByDate() []domain.Transaction {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Get returns the transaction with the given id.
func (s *Store) Get(id string) (domain.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[id]; ok {
		return s.txs[i], true
	}
	return domain.Transaction{}, false
}

// Len returns the number of transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// Version returns the monotonically increasing mutation counter. Callers
// capture it before an asynchronous operation and compare afterwards to
// discard results computed against a stale collection.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// bump increments the version. Caller must hold the write lock.
func (s *Store) bump() uint64 {
	s.version++
	return s.version
}

func notify(hooks []ChangeHook, version uint64) {
	for _, h := range hooks {
		h(version)
	}
}
