package useCases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/crosspost_translator/internal/domain"
)

var original = domain.Message{ID: "A", ChannelID: "C", GuildID: "G", AuthorID: "news", Content: "Hello", Crosspost: true}

func reply(id, content string) domain.Message {
	return domain.Message{ID: id, ChannelID: "C", GuildID: "G", AuthorID: "bot", Content: content}
}

func TestSync_NoPriorReplies(t *testing.T) {
	p := newFakePlatform()
	st := newRecordingStore()
	s := NewReplySynchronizer(p, st, discardLogger())

	res, err := s.Sync(context.Background(), original, []string{"one", "two"})
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two"}, p.sent)
	assert.Equal(t, 2, res.Created)
	assert.Zero(t, res.Edited)
	assert.False(t, res.Reset)

	ids, _ := st.GetReplies(context.Background(), "A")
	assert.Equal(t, res.ReplyIDs, ids)
	assert.Len(t, ids, 2)
	assert.Equal(t, "one", p.content(ids[0]))
	assert.Equal(t, "two", p.content(ids[1]))
}

func TestSync_EditsAndAppends(t *testing.T) {
	ctx := context.Background()
	p := newFakePlatform()
	p.put(reply("R1", "old 1"))
	p.put(reply("R2", "old 2"))
	st := newRecordingStore()
	require.NoError(t, st.SetReplies(ctx, "A", []string{"R1", "R2"}))
	s := NewReplySynchronizer(p, st, discardLogger())

	res, err := s.Sync(ctx, original, []string{"new 1", "new 2", "new 3"})
	require.NoError(t, err)

	assert.Equal(t, []string{"R1", "R2"}, p.edited)
	assert.Equal(t, []string{"new 3"}, p.sent)
	assert.Empty(t, p.deleted)
	assert.Equal(t, 2, res.Edited)
	assert.Equal(t, 1, res.Created)

	ids, _ := st.GetReplies(ctx, "A")
	require.Len(t, ids, 3)
	assert.Equal(t, []string{"R1", "R2"}, ids[:2])
	assert.Equal(t, "new 1", p.content("R1"))
	assert.Equal(t, "new 2", p.content("R2"))
	assert.Equal(t, "new 3", p.content(ids[2]))
}

func TestSync_MissingReplyResetsWholeSet(t *testing.T) {
	ctx := context.Background()
	p := newFakePlatform()
	p.put(reply("R1", "old 1"))
	// R2 was deleted out-of-band
	st := newRecordingStore()
	require.NoError(t, st.SetReplies(ctx, "A", []string{"R1", "R2"}))
	s := NewReplySynchronizer(p, st, discardLogger())

	res, err := s.Sync(ctx, original, []string{"fresh"})
	require.NoError(t, err)

	assert.True(t, res.Reset)
	assert.Equal(t, []string{"R1", "R2"}, p.deletedSorted())
	assert.False(t, p.exists("R1"))
	assert.Empty(t, p.edited)
	assert.Equal(t, []string{"fresh"}, p.sent)

	ids, _ := st.GetReplies(ctx, "A")
	require.Len(t, ids, 1)
	assert.NotContains(t, []string{"R1", "R2"}, ids[0])
	assert.Equal(t, "fresh", p.content(ids[0]))
}

func TestSync_ShrinksReplySet(t *testing.T) {
	ctx := context.Background()
	p := newFakePlatform()
	p.put(reply("R1", "old 1"))
	p.put(reply("R2", "old 2"))
	p.put(reply("R3", "old 3"))
	st := newRecordingStore()
	require.NoError(t, st.SetReplies(ctx, "A", []string{"R1", "R2", "R3"}))
	s := NewReplySynchronizer(p, st, discardLogger())

	res, err := s.Sync(ctx, original, []string{"only"})
	require.NoError(t, err)

	assert.Equal(t, []string{"R1"}, p.edited)
	assert.Equal(t, []string{"R2", "R3"}, p.deletedSorted())
	assert.Empty(t, p.sent)
	assert.Equal(t, 2, res.Deleted)

	ids, _ := st.GetReplies(ctx, "A")
	assert.Equal(t, []string{"R1"}, ids)
	assert.Equal(t, "only", p.content("R1"))
}

func TestSync_DeleteFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	p := newFakePlatform()
	p.put(reply("R1", "old 1"))
	p.put(reply("R2", "old 2"))
	p.deleteErr = errBoom
	st := newRecordingStore()
	require.NoError(t, st.SetReplies(ctx, "A", []string{"R1", "R2"}))
	s := NewReplySynchronizer(p, st, discardLogger())

	res, err := s.Sync(ctx, original, []string{"only"})
	require.NoError(t, err)

	assert.Zero(t, res.Deleted)
	assert.Equal(t, []string{"R2"}, p.deleted)
	ids, _ := st.GetReplies(ctx, "A")
	assert.Equal(t, []string{"R1"}, ids)
}

func TestSync_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := newFakePlatform()
	st := newRecordingStore()
	s := NewReplySynchronizer(p, st, discardLogger())

	first, err := s.Sync(ctx, original, []string{"a", "b"})
	require.NoError(t, err)
	second, err := s.Sync(ctx, original, []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, first.ReplyIDs, second.ReplyIDs)
	assert.Equal(t, 2, second.Edited)
	assert.Zero(t, second.Created)
	assert.Len(t, p.sent, 2)
}

func TestSync_SendFailureKeepsProgress(t *testing.T) {
	ctx := context.Background()
	p := newFakePlatform()
	p.put(reply("R1", "old 1"))
	st := newRecordingStore()
	require.NoError(t, st.SetReplies(ctx, "A", []string{"R1"}))
	p.sendErr = errBoom
	s := NewReplySynchronizer(p, st, discardLogger())

	_, err := s.Sync(ctx, original, []string{"new 1", "new 2"})
	require.ErrorIs(t, err, errBoom)

	ids, _ := st.GetReplies(ctx, "A")
	assert.Equal(t, []string{"R1"}, ids)
	assert.Equal(t, "new 1", p.content("R1"))
}

func TestSync_EditFailureKeepsUnreachedReplies(t *testing.T) {
	ctx := context.Background()
	p := newFakePlatform()
	p.put(reply("R1", "old 1"))
	p.put(reply("R2", "old 2"))
	st := newRecordingStore()
	require.NoError(t, st.SetReplies(ctx, "A", []string{"R1", "R2"}))
	p.editErr = errBoom
	s := NewReplySynchronizer(p, st, discardLogger())

	_, err := s.Sync(ctx, original, []string{"new 1"})
	require.Error(t, err)

	ids, _ := st.GetReplies(ctx, "A")
	assert.Equal(t, []string{"R1", "R2"}, ids)
	assert.Empty(t, p.deleted)
}

func TestSync_StoreReadError(t *testing.T) {
	p := newFakePlatform()
	st := newRecordingStore()
	st.getErr = errBoom
	s := NewReplySynchronizer(p, st, discardLogger())

	_, err := s.Sync(context.Background(), original, []string{"x"})

	require.ErrorIs(t, err, errBoom)
	assert.Zero(t, p.callCount())
	assert.Zero(t, st.writeCount())
}
