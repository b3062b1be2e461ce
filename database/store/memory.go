package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryStore is an in-memory Store with the same transaction contract as
// MongoStore: optimistic snapshot reads, buffered writes, and retry of the
// callback when a read document was concurrently modified. It backs the
// package tests; documents round-trip through bson so struct tags behave
// exactly as they do against MongoDB.
type MemoryStore struct {
	mu    sync.Mutex
	colls map[string]map[string]memDoc
	// version is a store-wide monotonic counter stamped on every committed
	// write, including deletes. Versions never repeat, so a document that is
	// deleted and recreated cannot collide with a stale snapshot of its
	// earlier incarnation.
	version uint64
}

type memDoc struct {
	raw     bson.Raw
	version uint64
	// deleted marks a tombstone: the document is absent to readers but keeps
	// its version so recreation stays distinguishable from the old state.
	deleted bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{colls: make(map[string]map[string]memDoc)}
}

type memKey struct {
	coll, id string
}

type memWrite struct {
	raw     bson.Raw // nil means delete
	deleted bool
}

type memoryTxn struct {
	store  *MemoryStore
	reads  map[memKey]uint64 // version observed, 0 = absent
	writes map[memKey]memWrite
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Txn) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := &memoryTxn{
			store:  s,
			reads:  make(map[memKey]uint64),
			writes: make(map[memKey]memWrite),
		}
		if err := fn(tx); err != nil {
			return err
		}
		if s.commit(tx) {
			return nil
		}
		// Snapshot went stale under a concurrent commit; rerun the callback.
	}
}

// commit validates the read set and applies buffered writes atomically.
func (s *MemoryStore) commit(tx *memoryTxn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, version := range tx.reads {
		if s.versionLocked(key) != version {
			return false
		}
	}
	for key, w := range tx.writes {
		coll := s.colls[key.coll]
		if coll == nil {
			coll = make(map[string]memDoc)
			s.colls[key.coll] = coll
		}
		s.version++
		if w.deleted {
			coll[key.id] = memDoc{version: s.version, deleted: true}
			continue
		}
		coll[key.id] = memDoc{raw: w.raw, version: s.version}
	}
	return true
}

func (s *MemoryStore) versionLocked(key memKey) uint64 {
	if coll, ok := s.colls[key.coll]; ok {
		if doc, ok := coll[key.id]; ok {
			return doc.version
		}
	}
	return 0
}

func (t *memoryTxn) Get(collection, id string, out any) (bool, error) {
	key := memKey{collection, id}

	// Reads after writes observe this transaction's own buffer.
	if w, ok := t.writes[key]; ok {
		if w.deleted {
			return false, nil
		}
		return true, bson.Unmarshal(w.raw, out)
	}

	t.store.mu.Lock()
	doc, exists := t.store.colls[collection][id]
	t.store.mu.Unlock()

	// Tombstones read as absent but keep their version in the read set.
	current := uint64(0)
	if exists {
		current = doc.version
	}
	if prev, seen := t.reads[key]; !seen || prev != current {
		// On a changed re-read the snapshot is already broken and commit
		// will fail regardless.
		t.reads[key] = current
	}

	if !exists || doc.deleted {
		return false, nil
	}
	return true, bson.Unmarshal(doc.raw, out)
}

func (t *memoryTxn) Set(collection, id string, doc any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	t.writes[memKey{collection, id}] = memWrite{raw: raw}
	return nil
}

func (t *memoryTxn) Delete(collection, id string) error {
	t.writes[memKey{collection, id}] = memWrite{deleted: true}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, out any) (bool, error) {
	s.mu.Lock()
	doc, exists := s.colls[collection][id]
	s.mu.Unlock()
	if !exists || doc.deleted {
		return false, nil
	}
	return true, bson.Unmarshal(doc.raw, out)
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filter map[string]any, out any) error {
	outv := reflect.ValueOf(out)
	if outv.Kind() != reflect.Ptr || outv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find: out must be a pointer to a slice, got %T", out)
	}

	s.mu.Lock()
	raws := make([]bson.Raw, 0)
	for _, doc := range s.colls[collection] {
		if doc.deleted {
			continue
		}
		if matchesFilter(doc.raw, filter) {
			raws = append(raws, doc.raw)
		}
	}
	s.mu.Unlock()

	slice := outv.Elem()
	elemType := slice.Type().Elem()
	for _, raw := range raws {
		ev := reflect.New(elemType)
		if err := bson.Unmarshal(raw, ev.Interface()); err != nil {
			return fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		slice = reflect.Append(slice, ev.Elem())
	}
	outv.Elem().Set(slice)
	return nil
}

// matchesFilter applies top-level equality matching, mirroring the subset of
// filter syntax the backend uses against MongoDB.
func matchesFilter(raw bson.Raw, filter map[string]any) bool {
	if len(filter) == 0 {
		return true
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return false
	}
	for field, want := range filter {
		got, ok := doc[field]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}
