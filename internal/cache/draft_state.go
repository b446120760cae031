package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/storefront-next/internal/pricing"
)

const draftStateTTL = 2 * time.Hour

// DraftState 会话订单草稿快照
type DraftState struct {
	SessionID  string             `json:"session_id"`            // 会话标识
	CustomerID uint               `json:"customer_id,omitempty"` // 绑定的客户ID（匿名为 0）
	Draft      pricing.OrderDraft `json:"draft"`                 // 草稿内容
	UpdatedAt  int64              `json:"updated_at"`            // 最近更新（Unix 秒）
}

// DraftStore 会话草稿存储
type DraftStore interface {
	Get(ctx context.Context, sessionID string) (*DraftState, bool, error)
	Set(ctx context.Context, state *DraftState) error
	Del(ctx context.Context, sessionID string) error
}

// NewDraftStore 根据缓存可用性选择草稿存储实现：
// Redis 启用时走共享缓存，否则退化为进程内存储（单实例部署与测试）。
func NewDraftStore() DraftStore {
	if Enabled() {
		return &RedisDraftStore{}
	}
	return NewMemoryDraftStore()
}

func draftStateKey(sessionID string) string {
	return fmt.Sprintf("draft:%s", sessionID)
}

// RedisDraftStore 基于 Redis 的草稿存储
type RedisDraftStore struct{}

// Get 获取会话草稿
func (s *RedisDraftStore) Get(ctx context.Context, sessionID string) (*DraftState, bool, error) {
	if sessionID == "" {
		return nil, false, nil
	}
	var state DraftState
	hit, err := GetJSON(ctx, draftStateKey(sessionID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// Set 写入会话草稿（滚动续期）
func (s *RedisDraftStore) Set(ctx context.Context, state *DraftState) error {
	if state == nil || state.SessionID == "" {
		return nil
	}
	state.UpdatedAt = time.Now().Unix()
	return SetJSON(ctx, draftStateKey(state.SessionID), state, draftStateTTL)
}

// Del 删除会话草稿
func (s *RedisDraftStore) Del(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return Del(ctx, draftStateKey(sessionID))
}

// MemoryDraftStore 进程内草稿存储
type MemoryDraftStore struct {
	mu      sync.RWMutex
	entries map[string]memoryDraftEntry
}

type memoryDraftEntry struct {
	state     DraftState
	expiresAt time.Time
}

// NewMemoryDraftStore 创建进程内草稿存储
func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{entries: make(map[string]memoryDraftEntry)}
}

// Get 获取会话草稿
func (s *MemoryDraftStore) Get(_ context.Context, sessionID string) (*DraftState, bool, error) {
	if sessionID == "" {
		return nil, false, nil
	}
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	state := entry.state
	state.Draft = entry.state.Draft.Clone()
	return &state, true, nil
}

// Set 写入会话草稿（滚动续期）
func (s *MemoryDraftStore) Set(_ context.Context, state *DraftState) error {
	if state == nil || state.SessionID == "" {
		return nil
	}
	stored := *state
	stored.Draft = state.Draft.Clone()
	stored.UpdatedAt = time.Now().Unix()
	s.mu.Lock()
	s.entries[state.SessionID] = memoryDraftEntry{
		state:     stored,
		expiresAt: time.Now().Add(draftStateTTL),
	}
	s.mu.Unlock()
	return nil
}

// Del 删除会话草稿
func (s *MemoryDraftStore) Del(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}
