// Package workflowtest 提供工作流引擎测试用的内存存储和记录类型
package workflowtest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
)

type key struct {
	kind workflow.Kind
	id   string
}

// MemoryStore 内存存储,事务采用写时复制,出错时丢弃整个副本
type MemoryStore struct {
	mu      sync.Mutex
	records map[key]workflow.Record
	history []workflow.HistoryEntry
	seq     int64

	// FailSave 非空时在 Save 中调用,返回错误即模拟持久化故障
	FailSave func(rec workflow.Record) error
	// FailHistory 非空时在 AppendHistory 中调用
	FailHistory func(entries []workflow.HistoryEntry) error

	LoadManyCalls int
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[key]workflow.Record)}
}

// Put 直接写入记录,不产生历史
func (s *MemoryStore) Put(recs ...workflow.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		s.records[key{rec.GetKind(), rec.GetID()}] = rec.Clone()
	}
}

// Entries 返回全部历史,按追加顺序
func (s *MemoryStore) Entries() []workflow.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]workflow.HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Transaction 实现 workflow.Store
func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx workflow.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		store:   s,
		records: make(map[key]workflow.Record, len(s.records)),
		seq:     s.seq,
	}
	for k, rec := range s.records {
		tx.records[k] = rec.Clone()
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.records = tx.records
	s.history = append(s.history, tx.history...)
	s.seq = tx.seq
	return nil
}

// Get 实现 workflow.Store
func (s *MemoryStore) Get(ctx context.Context, kind workflow.Kind, id string) (workflow.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key{kind, id}]
	if !ok {
		return nil, workflow.NewError(workflow.CodeNotFound, fmt.Sprintf("%s record %s not found", kind, id))
	}
	return rec.Clone(), nil
}

// History 实现 workflow.Store
func (s *MemoryStore) History(ctx context.Context, kind workflow.Kind, id string) ([]workflow.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []workflow.HistoryEntry
	for _, e := range s.history {
		if e.Kind == kind && e.RecordID == id {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ChangedAt.Equal(out[j].ChangedAt) {
			return out[i].ChangedAt.After(out[j].ChangedAt)
		}
		return out[i].Sequence > out[j].Sequence
	})
	return out, nil
}

type memoryTx struct {
	store   *MemoryStore
	records map[key]workflow.Record
	history []workflow.HistoryEntry
	seq     int64
}

func (t *memoryTx) Load(ctx context.Context, kind workflow.Kind, id string) (workflow.Record, error) {
	rec, ok := t.records[key{kind, id}]
	if !ok {
		return nil, workflow.NewError(workflow.CodeNotFound, fmt.Sprintf("%s record %s not found", kind, id))
	}
	return rec.Clone(), nil
}

func (t *memoryTx) LoadMany(ctx context.Context, kind workflow.Kind, ids []string) (map[string]workflow.Record, error) {
	t.store.LoadManyCalls++
	out := make(map[string]workflow.Record, len(ids))
	for _, id := range ids {
		if rec, ok := t.records[key{kind, id}]; ok {
			out[id] = rec.Clone()
		}
	}
	return out, nil
}

func (t *memoryTx) Insert(ctx context.Context, rec workflow.Record) error {
	k := key{rec.GetKind(), rec.GetID()}
	if _, exists := t.records[k]; exists {
		return fmt.Errorf("duplicate key %s/%s", k.kind, k.id)
	}
	t.records[k] = rec.Clone()
	return nil
}

func (t *memoryTx) Save(ctx context.Context, rec workflow.Record) error {
	if t.store.FailSave != nil {
		if err := t.store.FailSave(rec); err != nil {
			return err
		}
	}
	k := key{rec.GetKind(), rec.GetID()}
	current, ok := t.records[k]
	if !ok || current.GetVersion() != rec.GetVersion() {
		return workflow.NewError(workflow.CodeConcurrentModification,
			fmt.Sprintf("%s record %s was modified concurrently", k.kind, k.id))
	}
	rec.SetVersion(rec.GetVersion() + 1)
	t.records[k] = rec.Clone()
	return nil
}

func (t *memoryTx) AppendHistory(ctx context.Context, entries ...workflow.HistoryEntry) error {
	if t.store.FailHistory != nil {
		if err := t.store.FailHistory(entries); err != nil {
			return err
		}
	}
	for _, e := range entries {
		t.seq++
		e.Sequence = t.seq
		t.history = append(t.history, e)
	}
	return nil
}
