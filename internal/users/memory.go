package users

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore はプロセス内のマップに保存する Store 実装です（開発・テスト用）。
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore は空の MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Get はメールアドレスに一致するレコードを返します。
func (s *MemoryStore) Get(ctx context.Context, email string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[email]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Create はレコードが存在しない場合のみ保存します。
func (s *MemoryStore) Create(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.Email]; ok {
		return ErrAlreadyExists
	}
	s.records[record.Email] = *record
	return nil
}
