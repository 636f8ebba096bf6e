package history_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"ai_news_generator/generator"
	"ai_news_generator/history"
	"ai_news_generator/logging"

	"github.com/m-mizutani/gt"
)

func sampleRequest(text string) generator.Request {
	return generator.Request{
		FreeText:   text,
		SceneMedia: []generator.MediaItem{{URL: "http://x/1.jpg", Description: "现场图片1号"}},
		Quotes:     []generator.QuoteItem{{SpeakerName: "张三", Text: "大家好", Summarize: true}},
	}
}

func fixedClock() func() time.Time {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestAppendThenLoad(t *testing.T) {
	ctx := context.Background()
	slot := history.NewMemorySlot()
	store := history.NewStore(slot, history.WithClock(fixedClock()))

	req := sampleRequest("发布会今天召开")
	res := generator.Result{Content: "# 标题\n正文", Title: "标题", Summary: "正文"}
	entry := store.Append(ctx, req, res)
	gt.NotEqual(t, entry.ID, "")
	gt.Equal(t, entry.ShortTitle, "发布会今天召开")

	reloaded := history.NewStore(slot).Load(ctx)
	gt.A(t, reloaded).Length(1)
	gt.Equal(t, reloaded[0].ID, entry.ID)
	gt.Equal(t, reloaded[0].Request, req)
	gt.Equal(t, reloaded[0].Result, res)
	gt.True(t, reloaded[0].CreatedAt.Equal(entry.CreatedAt))
}

func TestCapacityEvictsOldest(t *testing.T) {
	ctx := context.Background()
	slot := history.NewMemorySlot()
	store := history.NewStore(slot, history.WithClock(fixedClock()))

	var ids []string
	for i := 0; i < 51; i++ {
		ids = append(ids, store.Append(ctx, sampleRequest(fmt.Sprintf("第%d条", i)), generator.Result{Content: "c"}).ID)
	}

	list := history.NewStore(slot).Load(ctx)
	gt.A(t, list).Length(history.DefaultCapacity)
	gt.Equal(t, list[0].ID, ids[50])
	gt.Equal(t, list[49].ID, ids[1])
	for _, e := range list {
		gt.NotEqual(t, e.ID, ids[0])
	}
}

func TestIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	store := history.NewStore(history.NewMemorySlot())
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id := store.Append(ctx, sampleRequest("x"), generator.Result{}).ID
		gt.False(t, seen[id])
		seen[id] = true
	}
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	slot := history.NewMemorySlot()
	store := history.NewStore(slot)

	a := store.Append(ctx, sampleRequest("a"), generator.Result{Content: "a"})
	b := store.Append(ctx, sampleRequest("b"), generator.Result{Content: "b"})

	remaining := store.Remove(ctx, a.ID)
	gt.A(t, remaining).Length(1)
	gt.Equal(t, remaining[0].ID, b.ID)

	for _, e := range history.NewStore(slot).Load(ctx) {
		gt.NotEqual(t, e.ID, a.ID)
	}
	_, ok := store.Get(a.ID)
	gt.False(t, ok)
	got, ok := store.Get(b.ID)
	gt.True(t, ok)
	gt.Equal(t, got.Result.Content, "b")

	gt.A(t, store.Remove(ctx, "no-such-id")).Length(1)

	store.Clear(ctx)
	gt.A(t, store.List()).Length(0)
	gt.A(t, history.NewStore(slot).Load(ctx)).Length(0)
}

func TestLoadMalformedData(t *testing.T) {
	ctx := context.Background()
	slot := history.NewMemorySlot()
	gt.NoError(t, slot.Put(ctx, history.SlotKey, []byte("{not json")))

	var buf bytes.Buffer
	store := history.NewStore(slot, history.WithLogger(logging.New("debug", &buf)))
	list := store.Load(ctx)
	gt.A(t, list).Length(0)
	gt.S(t, buf.String()).Contains("malformed history data")
}

type failingSlot struct {
	history.Slot
	failPut bool
}

func (f *failingSlot) Put(ctx context.Context, key string, data []byte) error {
	if f.failPut {
		return errors.New("disk full")
	}
	return f.Slot.Put(ctx, key, data)
}

func TestFailedWriteKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{Slot: history.NewMemorySlot()}
	var buf bytes.Buffer
	store := history.NewStore(slot, history.WithLogger(logging.New("info", &buf)))

	first := store.Append(ctx, sampleRequest("first"), generator.Result{Content: "1"})
	slot.failPut = true
	store.Append(ctx, sampleRequest("second"), generator.Result{Content: "2"})

	list := store.List()
	gt.A(t, list).Length(1)
	gt.Equal(t, list[0].ID, first.ID)
	gt.S(t, buf.String()).Contains("failed to persist history")

	gt.A(t, store.Remove(ctx, first.ID)).Length(1)
}

func TestShortTitle(t *testing.T) {
	forty := strings.Repeat("新", 40)
	gt.Equal(t, history.ShortTitle(forty), strings.Repeat("新", 30)+"...")
	gt.Equal(t, history.ShortTitle(strings.Repeat("a", 30)), strings.Repeat("a", 30))
	gt.Equal(t, history.ShortTitle(""), "未命名")
	gt.Equal(t, history.ShortTitle("   "), "未命名")
	gt.Equal(t, history.ShortTitle("  "+strings.Repeat("b", 38)), "  "+strings.Repeat("b", 28)+"...")
}

type flakySlot struct {
	history.Slot
	failGet bool
}

func (f *flakySlot) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet {
		return nil, errors.New("i/o timeout")
	}
	return f.Slot.Get(ctx, key)
}

func TestReadFailureDoesNotOverwriteStoredHistory(t *testing.T) {
	ctx := context.Background()
	slot := &flakySlot{Slot: history.NewMemorySlot()}
	seed := history.NewStore(slot)
	for i := 0; i < 5; i++ {
		seed.Append(ctx, sampleRequest(fmt.Sprintf("旧记录%d", i)), generator.Result{Content: "c"})
	}

	var buf bytes.Buffer
	store := history.NewStore(slot, history.WithLogger(logging.New("info", &buf)))
	slot.failGet = true
	gt.A(t, store.Load(ctx)).Length(0)
	gt.S(t, buf.String()).Contains("failed to read history")

	// 槽位仍不可读时写入被跳过。
	store.Append(ctx, sampleRequest("新记录"), generator.Result{Content: "n"})
	gt.A(t, store.List()).Length(0)
	slot.failGet = false
	gt.A(t, history.NewStore(slot).Load(ctx)).Length(5)

	// 恢复后先补读再写入。
	added := store.Append(ctx, sampleRequest("新记录"), generator.Result{Content: "n"})
	list := history.NewStore(slot).Load(ctx)
	gt.A(t, list).Length(6)
	gt.Equal(t, list[0].ID, added.ID)
	gt.Equal(t, list[5].ShortTitle, "旧记录0")
}
