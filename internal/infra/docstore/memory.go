package docstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/infra"
)

// MemoryStore is an in-memory Store used by unit tests and local runs. It
// delivers a delta to every matching subscriber after each batch write.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]map[string]Document // tenant -> collection -> id

	subMu sync.Mutex
	subs  []*memorySub

	// WriteHook, when set, can veto individual writes. Tests use it to
	// simulate one half of a dual write failing.
	WriteHook func(Write) error

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: map[string]map[string]map[string]Document{},
		now:  time.Now,
	}
}

type memorySub struct {
	tenantID   string
	collection string
	ch         chan Delta
	closeOnce  sync.Once
	store      *MemoryStore
}

func (s *memorySub) Deltas() <-chan Delta { return s.ch }

func (s *memorySub) Close() {
	s.closeOnce.Do(func() {
		s.store.removeSub(s)
		close(s.ch)
	})
}

func (m *MemoryStore) Get(_ context.Context, tenantID, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[tenantID][collection][id]
	if !ok {
		return Document{}, infra.WrapStoreErr(infra.KindNotFound, "document not found", nil)
	}
	return doc, nil
}

func (m *MemoryStore) Query(_ context.Context, q Query) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Document
	for _, doc := range m.docs[q.TenantID][q.Collection] {
		if matchesEquals(doc, q.Equals) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func matchesEquals(doc Document, equals map[string]string) bool {
	if len(equals) == 0 {
		return true
	}
	var body map[string]any
	if err := json.Unmarshal(doc.Data, &body); err != nil {
		return false
	}
	for field, want := range equals {
		got, ok := body[field].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func (m *MemoryStore) BatchWrite(_ context.Context, writes []Write) BatchResult {
	result := BatchResult{Errs: make([]error, len(writes))}
	applied := make([]Document, 0, len(writes))

	m.mu.Lock()
	for i, w := range writes {
		if m.WriteHook != nil {
			if err := m.WriteHook(w); err != nil {
				result.Errs[i] = infra.WrapStoreErr(infra.KindStoreFailure, "write rejected", err)
				continue
			}
		}
		tenant, ok := m.docs[w.TenantID]
		if !ok {
			tenant = map[string]map[string]Document{}
			m.docs[w.TenantID] = tenant
		}
		coll, ok := tenant[w.Collection]
		if !ok {
			coll = map[string]Document{}
			tenant[w.Collection] = coll
		}
		switch w.Op {
		case OpDelete:
			delete(coll, w.ID)
			applied = append(applied, Document{TenantID: w.TenantID, Collection: w.Collection, ID: w.ID})
		default:
			doc := Document{
				TenantID:   w.TenantID,
				Collection: w.Collection,
				ID:         w.ID,
				Data:       append(json.RawMessage(nil), w.Data...),
				UpdatedAt:  m.now(),
			}
			coll[w.ID] = doc
			applied = append(applied, doc)
		}
	}
	m.mu.Unlock()

	m.fanOut(applied)
	return result
}

func (m *MemoryStore) Subscribe(_ context.Context, tenantID, collection string) (Subscription, error) {
	sub := &memorySub{
		tenantID:   tenantID,
		collection: collection,
		ch:         make(chan Delta, 16),
		store:      m,
	}
	m.subMu.Lock()
	m.subs = append(m.subs, sub)
	m.subMu.Unlock()
	return sub, nil
}

// EmitEmptyDelta pushes a zero-record delta to matching subscribers. Tests
// use it to exercise the legitimately-empty vs transient-empty refetch path.
func (m *MemoryStore) EmitEmptyDelta(tenantID, collection string) {
	m.deliver(Delta{TenantID: tenantID, Collection: collection})
}

// DropSubscriptions closes every matching subscription from the store side,
// simulating a server-initiated stream drop. Tests use it to exercise the
// resubscribe path.
func (m *MemoryStore) DropSubscriptions(tenantID, collection string) {
	m.subMu.Lock()
	subs := make([]*memorySub, len(m.subs))
	copy(subs, m.subs)
	m.subMu.Unlock()

	for _, sub := range subs {
		if sub.tenantID == tenantID && sub.collection == collection {
			sub.Close()
		}
	}
}

func (m *MemoryStore) fanOut(applied []Document) {
	type target struct{ tenant, collection string }
	grouped := map[target][]Document{}
	for _, doc := range applied {
		t := target{tenant: doc.TenantID, collection: doc.Collection}
		grouped[t] = append(grouped[t], doc)
	}
	for t, docs := range grouped {
		m.deliver(Delta{TenantID: t.tenant, Collection: t.collection, Docs: docs})
	}
}

func (m *MemoryStore) deliver(delta Delta) {
	m.subMu.Lock()
	subs := make([]*memorySub, len(m.subs))
	copy(subs, m.subs)
	m.subMu.Unlock()

	for _, sub := range subs {
		if sub.tenantID != delta.TenantID || sub.collection != delta.Collection {
			continue
		}
		select {
		case sub.ch <- delta:
		default:
			// slow consumer; it will catch up on its next reconciliation
		}
	}
}

func (m *MemoryStore) removeSub(target *memorySub) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for i, sub := range m.subs {
		if sub == target {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return
		}
	}
}
