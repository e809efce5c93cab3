package telegram_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/marcelsud/telegram-ragbot/telegram"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	errs    []error
	updates []tgbotapi.Update
	offsets []int
	stopped int
}

func (f *fakeSource) Updates(_ context.Context, offset, _ int) (tgbotapi.UpdatesChannel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offsets = append(f.offsets, offset)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	ch := make(chan tgbotapi.Update, len(f.updates))
	for _, u := range f.updates {
		ch <- u
	}
	close(ch)
	return ch, nil
}

func (f *fakeSource) StopUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

func TestPoller_Run(t *testing.T) {
	t.Run("advances offset and hands over encoded updates", func(t *testing.T) {
		src := &fakeSource{
			updates: []tgbotapi.Update{
				{UpdateID: 5, Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: 9, Type: "private"}, Text: "hi"}},
				{UpdateID: 6},
				{UpdateID: 7},
			},
		}
		var got []string
		p := telegram.NewPoller(src, func(_ context.Context, raw []byte) {
			got = append(got, string(raw))
		}, zerolog.Nop())

		err := p.Run(context.Background())

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Contains(t, got[0], `"update_id":5`)
		assert.Contains(t, got[0], `"text":"hi"`)
		assert.Contains(t, got[2], `"update_id":7`)
		assert.Equal(t, []int{0}, src.offsets)
		assert.Equal(t, 8, p.Offset())
		assert.Equal(t, 1, src.stopped)
	})

	t.Run("retries after the loop fails to start", func(t *testing.T) {
		src := &fakeSource{
			errs:    []error{errors.New("boom")},
			updates: []tgbotapi.Update{{UpdateID: 1}},
		}
		calls := 0
		p := telegram.NewPoller(src, func(context.Context, []byte) { calls++ }, zerolog.Nop())
		p.Backoff = time.Millisecond

		assert.NoError(t, p.Run(context.Background()))
		assert.Equal(t, 1, calls)
		assert.Equal(t, []int{0, 0}, src.offsets)
		assert.Equal(t, 2, p.Offset())
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := &fakeSource{errs: []error{errors.New("unreachable")}}
		p := telegram.NewPoller(src, func(context.Context, []byte) {}, zerolog.Nop())

		assert.NoError(t, p.Run(ctx))
		assert.Equal(t, 0, src.stopped)
	})
}
