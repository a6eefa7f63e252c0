package useCases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/larriantoniy/crosspost_translator/internal/adapters/store"
	"github.com/larriantoniy/crosspost_translator/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePlatform keeps messages in memory and records every call.
type fakePlatform struct {
	mu       sync.Mutex
	self     string
	messages map[string]*domain.Message
	nextID   int

	messageable bool
	canSend     bool
	sendErr     error
	editErr     error
	deleteErr   error

	fetched []string
	sent    []string // contents of new replies in send order
	edited  []string // IDs of edited replies
	deleted []string
	calls   int

	events chan domain.Event
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		self:        "bot",
		messages:    map[string]*domain.Message{},
		messageable: true,
		canSend:     true,
		events:      make(chan domain.Event),
	}
}

func (f *fakePlatform) put(m domain.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[m.ID] = &m
}

func (f *fakePlatform) content(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.messages[id]; ok {
		return m.Content
	}
	return ""
}

func (f *fakePlatform) exists(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.messages[id]
	return ok
}

func (f *fakePlatform) deletedSorted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.deleted...)
	sort.Strings(out)
	return out
}

func (f *fakePlatform) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakePlatform) FetchMessage(_ context.Context, channelID, messageID string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.fetched = append(f.fetched, messageID)
	m, ok := f.messages[messageID]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakePlatform) SendReply(_ context.Context, reference domain.Message, content string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if strings.TrimSpace(content) == "" {
		return nil, errEmptyMessage
	}
	f.nextID++
	m := &domain.Message{
		ID:        fmt.Sprintf("N%d", f.nextID),
		ChannelID: reference.ChannelID,
		GuildID:   reference.GuildID,
		AuthorID:  f.self,
		Content:   content,
	}
	f.messages[m.ID] = m
	f.sent = append(f.sent, content)
	cp := *m
	return &cp, nil
}

func (f *fakePlatform) EditMessage(_ context.Context, channelID, messageID, content string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.editErr != nil {
		return nil, f.editErr
	}
	if strings.TrimSpace(content) == "" {
		return nil, errEmptyMessage
	}
	m, ok := f.messages[messageID]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	m.Content = content
	f.edited = append(f.edited, messageID)
	cp := *m
	return &cp, nil
}

func (f *fakePlatform) DeleteMessage(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.deleted = append(f.deleted, messageID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.messages[messageID]; !ok {
		return domain.ErrMessageNotFound
	}
	delete(f.messages, messageID)
	return nil
}

func (f *fakePlatform) Listen(ctx context.Context) (<-chan domain.Event, error) {
	return f.events, nil
}

func (f *fakePlatform) SelfID() string { return f.self }

func (f *fakePlatform) IsMessageable(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.messageable, nil
}

func (f *fakePlatform) CanSend(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.canSend, nil
}

func (f *fakePlatform) Close() {}

// fakeTranslator returns a fixed translation or error.
type fakeTranslator struct {
	mu     sync.Mutex
	fn     func(text string) (string, error)
	inputs []string
}

func (f *fakeTranslator) Translate(_ context.Context, text, from, to string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, text)
	return f.fn(text)
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

// recordingStore wraps a MemoryStore and counts writes.
type recordingStore struct {
	*store.MemoryStore
	mu     sync.Mutex
	writes int
	getErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: store.NewMemoryStore()}
}

func (s *recordingStore) GetReplies(ctx context.Context, originalID string) ([]string, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.MemoryStore.GetReplies(ctx, originalID)
}

func (s *recordingStore) SetReplies(ctx context.Context, originalID string, ids []string) error {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return s.MemoryStore.SetReplies(ctx, originalID, ids)
}

func (s *recordingStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

var (
	errBoom = errors.New("boom")
	// Discord отвечает 50006 на пустое сообщение
	errEmptyMessage = errors.New("cannot send an empty message")
)
