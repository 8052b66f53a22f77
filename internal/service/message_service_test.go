package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"GymChat/internal/api/dto"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMessageService(t *testing.T, repo *memRepo) (*messageServiceImpl, *Hub, *syncBroker, *claims, *capturingProducer) {
	t.Helper()
	hub, broker := newSyncHub()
	c := &claims{}
	p := &capturingProducer{}
	svc := NewMessageService(repo, hub, c, p, 2).(*messageServiceImpl)
	svc.retryWait = 10 * time.Millisecond
	t.Cleanup(svc.Close)
	return svc, hub, broker, c, p
}

func decodeReceive(t *testing.T, frame []byte) dto.MessageDTO {
	t.Helper()
	var ev dto.Event
	require.NoError(t, json.Unmarshal(frame, &ev))
	require.Equal(t, dto.EventReceiveMessage, ev.Event)
	var m dto.MessageDTO
	require.NoError(t, json.Unmarshal(ev.Data, &m))
	return m
}

func TestAcceptRoutesToReceiverRoom(t *testing.T) {
	repo := &memRepo{}
	svc, hub, _, c, p := newTestMessageService(t, repo)
	receiver, sender := &recorder{}, &recorder{}
	hub.Join(9, receiver)
	hub.Join(5, sender)

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	out, err := svc.Accept(context.Background(), &dto.MessageDTO{
		SenderID: 5, SenderName: "Ana", SenderRole: "member",
		ReceiverID: 9, Message: "Hi", FileURL: "http://cdn.test/chat/x.png", Timestamp: ts,
	})
	require.NoError(t, err)
	assert.Equal(t, ts, out.Timestamp)

	require.Len(t, receiver.Frames(), 1)
	assert.Empty(t, sender.Frames())
	got := decodeReceive(t, receiver.Frames()[0])
	assert.Equal(t, "Hi", got.Message)
	assert.Equal(t, "member", got.SenderRole)

	require.Len(t, repo.Saved(), 1)
	assert.Equal(t, []string{"http://cdn.test/chat/x.png"}, c.urls)
	assert.Len(t, p.events, 1)
}

func TestAcceptStampsMissingTimestamp(t *testing.T) {
	svc, _, _, _, _ := newTestMessageService(t, &memRepo{})
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	out, err := svc.Accept(context.Background(), &dto.MessageDTO{
		SenderID: 5, SenderRole: "staff", ReceiverID: 5, Message: "same id",
	})
	require.NoError(t, err)
	assert.Equal(t, fixed, out.Timestamp)
}

func TestAcceptRejectsEmpty(t *testing.T) {
	svc, _, _, _, _ := newTestMessageService(t, &memRepo{})
	_, err := svc.Accept(context.Background(), &dto.MessageDTO{SenderID: 5, ReceiverID: 9})
	assert.ErrorIs(t, err, ErrParamInvalid)
	_, err = svc.Accept(context.Background(), nil)
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestAcceptRetriesFailedSave(t *testing.T) {
	repo := &memRepo{failures: 2}
	svc, _, _, _, _ := newTestMessageService(t, repo)

	_, err := svc.Accept(context.Background(), &dto.MessageDTO{
		SenderID: 5, SenderRole: "member", ReceiverID: 9, Message: "eventually",
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(repo.Saved()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestAcceptPublishFailure(t *testing.T) {
	svc, _, broker, _, _ := newTestMessageService(t, &memRepo{})
	broker.err = errors.New("redis down")

	_, err := svc.Accept(context.Background(), &dto.MessageDTO{
		SenderID: 5, SenderRole: "member", ReceiverID: 9, Message: "lost",
	})
	assert.ErrorIs(t, err, UnExpectedError)
}

func TestHistoryBothDirections(t *testing.T) {
	repo := &memRepo{}
	svc, _, _, _, _ := newTestMessageService(t, repo)
	ctx := context.Background()

	for _, m := range []*dto.MessageDTO{
		{SenderID: 5, SenderRole: "member", ReceiverID: 9, Message: "a"},
		{SenderID: 9, SenderRole: "staff", ReceiverID: 5, Message: "b"},
		{SenderID: 5, SenderRole: "member", ReceiverID: 7, Message: "c"},
	} {
		_, err := svc.Accept(ctx, m)
		require.NoError(t, err)
	}

	list, err := svc.History(ctx, 9, 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Message)
	assert.Equal(t, "b", list[1].Message)

	_, err = svc.History(ctx, 0, 5)
	assert.ErrorIs(t, err, ErrParamInvalid)
}
