package db

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps documents as JSON-shaped maps. It backs local runs
// without Firestore credentials and the package tests.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]map[string]map[string]any
	order map[string]map[string]int64
	seq   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  map[string]map[string]map[string]any{},
		order: map[string]map[string]int64{},
	}
}

func (m *MemoryStore) Get(_ context.Context, collection, id string, dst any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	return decode(doc, dst)
}

func (m *MemoryStore) Create(_ context.Context, collection string, data any) (string, error) {
	doc, err := toMap(data)
	if err != nil {
		return "", err
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, doc)
	return id, nil
}

// Put stores a document under a fixed id, replacing any previous value.
func (m *MemoryStore) Put(collection, id string, data any) error {
	doc, err := toMap(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, doc)
	return nil
}

func (m *MemoryStore) Merge(_ context.Context, collection, id string, fields map[string]any) error {
	patch, err := toMap(fields)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.data[collection][id]
	if !ok {
		m.put(collection, id, patch)
		return nil
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

func (m *MemoryStore) Update(_ context.Context, collection, id string, updates []Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	for _, u := range updates {
		v, err := normalize(u.Value)
		if err != nil {
			return err
		}
		setPath(doc, strings.Split(u.Path, "."), v)
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[collection], id)
	delete(m.order[collection], id)
	return nil
}

func (m *MemoryStore) Find(_ context.Context, collection string, q Query) ([]Document, error) {
	filters := make([]Filter, 0, len(q.Filters))
	for _, f := range q.Filters {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, err
		}
		filters = append(filters, Filter{Field: f.Field, Value: v})
	}

	m.mu.RLock()
	type entry struct {
		id  string
		seq int64
		doc map[string]any
	}
	var matched []entry
	for id, doc := range m.data[collection] {
		if matches(doc, filters) {
			snapshot, err := toMap(doc)
			if err != nil {
				m.mu.RUnlock()
				return nil, err
			}
			matched = append(matched, entry{id: id, seq: m.order[collection][id], doc: snapshot})
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if q.OrderBy != "" {
			c := compare(matched[i].doc[q.OrderBy], matched[j].doc[q.OrderBy])
			if c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		if q.Desc {
			return matched[i].seq > matched[j].seq
		}
		return matched[i].seq < matched[j].seq
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	docs := make([]Document, 0, len(matched))
	for _, e := range matched {
		doc := e.doc
		docs = append(docs, Document{ID: e.id, decode: func(dst any) error { return decode(doc, dst) }})
	}
	return docs, nil
}

func (m *MemoryStore) put(collection, id string, doc map[string]any) {
	if m.data[collection] == nil {
		m.data[collection] = map[string]map[string]any{}
		m.order[collection] = map[string]int64{}
	}
	m.seq++
	m.data[collection][id] = doc
	if _, ok := m.order[collection][id]; !ok {
		m.order[collection][id] = m.seq
	}
}

func toMap(data any) (map[string]any, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(b, &out)
	return out, err
}

func decode(doc map[string]any, dst any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func setPath(doc map[string]any, path []string, v any) {
	for len(path) > 1 {
		next, ok := doc[path[0]].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[path[0]] = next
		}
		doc = next
		path = path[1:]
	}
	doc[path[0]] = v
}

func matches(doc map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if compare(doc[f.Field], f.Value) != 0 {
			return false
		}
	}
	return true
}

// compare orders JSON values. Timestamps arrive as RFC 3339 strings.
func compare(a, b any) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			at, aerr := time.Parse(time.RFC3339Nano, av)
			bt, berr := time.Parse(time.RFC3339Nano, bv)
			if aerr == nil && berr == nil {
				return at.Compare(bt)
			}
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			if av == bv {
				return 0
			}
			if !av {
				return -1
			}
			return 1
		}
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}
	if b == nil {
		return 1
	}
	return strings.Compare(typeName(a), typeName(b))
}

func typeName(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
