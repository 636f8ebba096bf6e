package history

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ai_news_generator/generator"
	"ai_news_generator/logging"

	"github.com/google/uuid"
)

const (
	SlotKey         = "news_generator_history"
	DefaultCapacity = 50
	shortTitleLen   = 30
	untitled        = "未命名"
)

// Entry 是一次成功生成的记录。
type Entry struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"createdAt"`
	Request    generator.Request `json:"request"`
	Result     generator.Result  `json:"result"`
	ShortTitle string            `json:"shortTitle"`
}

// Store 持有内存中的记录列表（新的在前），每次修改后整体写回槽位。
// 持久化失败只记日志，不向调用方返回错误。
type Store struct {
	mu       sync.Mutex
	slot     Slot
	key      string
	capacity int
	entries  []Entry
	// loaded 为 false 时内存列表不可信，写入前必须先成功读取槽位。
	loaded bool
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Store)

func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func NewStore(slot Slot, opts ...Option) *Store {
	s := &Store{
		slot:     slot,
		key:      SlotKey,
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) log(ctx context.Context) *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.From(ctx)
}

// Load 从槽位读取列表；数据缺失或损坏时返回空列表。
// 读取失败时同样返回空列表，但在槽位恢复可读之前不会写回，以免覆盖已有记录。
func (s *Store) Load(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read(ctx)
	if err != nil {
		s.log(ctx).Error("failed to read history", "error", err)
		s.entries, s.loaded = nil, false
		return s.snapshot()
	}
	s.entries, s.loaded = entries, true
	return s.snapshot()
}

// read 只有存储本身出错时返回 error；空槽位和损坏数据都视为空列表。
func (s *Store) read(ctx context.Context) ([]Entry, error) {
	raw, err := s.slot.Get(ctx, s.key)
	if errors.Is(err, ErrSlotEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.log(ctx).Warn("malformed history data, starting empty", "error", err)
		return nil, nil
	}
	if len(entries) > s.capacity {
		entries = entries[:s.capacity]
	}
	return entries, nil
}

// ensureLoaded 在写入前补读槽位。调用方持有锁。
func (s *Store) ensureLoaded(ctx context.Context) bool {
	if s.loaded {
		return true
	}
	entries, err := s.read(ctx)
	if err != nil {
		s.log(ctx).Error("history slot unreadable, write skipped", "error", err)
		return false
	}
	s.entries, s.loaded = entries, true
	return true
}

// Append 生成新记录放在最前，超出容量时丢弃最旧的记录。
func (s *Store) Append(ctx context.Context, req generator.Request, res generator.Result) Entry {
	entry := Entry{
		ID:         newID(),
		CreatedAt:  s.now(),
		Request:    req,
		Result:     res,
		ShortTitle: ShortTitle(req.FreeText),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ensureLoaded(ctx) {
		return entry
	}
	next := make([]Entry, 0, len(s.entries)+1)
	next = append(next, entry)
	next = append(next, s.entries...)
	if len(next) > s.capacity {
		next = next[:s.capacity]
	}
	s.commit(ctx, next)
	return entry
}

// Remove 删除指定 id 的记录并返回剩余列表。
func (s *Store) Remove(ctx context.Context, id string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ensureLoaded(ctx) {
		return s.snapshot()
	}
	next := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.ID != id {
			next = append(next, e)
		}
	}
	if len(next) == len(s.entries) {
		return s.snapshot()
	}
	s.commit(ctx, next)
	return s.snapshot()
}

// Clear 清空全部记录。
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slot.Delete(ctx, s.key); err != nil {
		s.log(ctx).Error("failed to clear history", "error", err)
		return
	}
	s.entries, s.loaded = nil, true
}

// List 返回当前列表的副本（新的在前）。
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// commit 写入成功后才替换内存列表。调用方持有锁。
func (s *Store) commit(ctx context.Context, next []Entry) {
	raw, err := json.Marshal(next)
	if err != nil {
		s.log(ctx).Error("failed to encode history", "error", err)
		return
	}
	if err := s.slot.Put(ctx, s.key, raw); err != nil {
		s.log(ctx).Error("failed to persist history", "error", err, "entries", len(next))
		return
	}
	s.entries = next
}

func (s *Store) snapshot() []Entry {
	if len(s.entries) == 0 {
		return []Entry{}
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// ShortTitle 取正文前 30 个字符，过长时加省略号；空白正文返回 未命名。
func ShortTitle(text string) string {
	if strings.TrimSpace(text) == "" {
		return untitled
	}
	r := []rune(text)
	if len(r) <= shortTitleLen {
		return text
	}
	return string(r[:shortTitleLen]) + "..."
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
