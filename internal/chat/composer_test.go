package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	member5 = SessionIdentity{ID: 5, Role: RoleMember, DisplayName: "Ana"}
	staff5  = Participant{ID: 5, DisplayName: "Ivo", Role: RoleStaff, Ref: StaffRef(5)}
)

func newTestComposer(sender Sender, up AttachmentUploader) (*Composer, *sliceTimeline, *warnings) {
	tl := &sliceTimeline{}
	w := &warnings{}
	c := NewComposer(member5, sender, up, tl, w.Warn)
	c.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return c, tl, w
}

func attachment() *Attachment {
	return &Attachment{Name: "plan.pdf", Size: 3, Content: strings.NewReader("pdf")}
}

func TestComposeTextOnly(t *testing.T) {
	sender := &fakeSender{state: StateJoined}
	c, tl, _ := newTestComposer(sender, &fakeUploader{})

	msg, err := c.Compose(context.Background(), "  Hi  ", nil, &staff5)
	require.NoError(t, err)

	assert.Equal(t, Message{
		SenderID:   5,
		SenderName: "Ana",
		SenderRole: RoleMember,
		ReceiverID: 5,
		Text:       "Hi",
		Timestamp:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}, msg)
	assert.Equal(t, []Message{msg}, sender.Sent())
	assert.Equal(t, []Message{msg}, tl.msgs)
}

func TestComposeAttachmentOnlyAccepted(t *testing.T) {
	sender := &fakeSender{state: StateJoined}
	up := &fakeUploader{url: "https://files.gym.local/chat/plan.pdf"}
	c, tl, _ := newTestComposer(sender, up)

	msg, err := c.Compose(context.Background(), "", attachment(), &staff5)
	require.NoError(t, err)
	assert.Empty(t, msg.Text)
	assert.Equal(t, up.url, msg.AttachmentURL)
	assert.True(t, msg.Valid())
	assert.Len(t, tl.msgs, 1)
}

func TestComposeValidation(t *testing.T) {
	joined := &fakeSender{state: StateJoined}

	tests := []struct {
		name     string
		sender   Sender
		text     string
		file     *Attachment
		receiver *Participant
		wantErr  error
	}{
		{name: "neither text nor file", sender: joined, text: "   ", receiver: &staff5, wantErr: ErrComposeIncomplete},
		{name: "no receiver", sender: joined, text: "Hi", wantErr: ErrComposeNoReceiver},
		{name: "connecting", sender: &fakeSender{state: StateConnecting}, text: "Hi", receiver: &staff5, wantErr: ErrComposeNotConnected},
		{name: "disconnected", sender: &fakeSender{}, text: "Hi", receiver: &staff5, wantErr: ErrComposeNotConnected},
		{name: "nil sender", text: "Hi", receiver: &staff5, wantErr: ErrComposeNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{url: "u"}
			c, tl, _ := newTestComposer(tt.sender, up)
			_, err := c.Compose(context.Background(), tt.text, tt.file, tt.receiver)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, tl.msgs)
			assert.Zero(t, up.calls)
		})
	}
}

func TestComposeUploadFailureKeepsText(t *testing.T) {
	sender := &fakeSender{state: StateJoined}
	up := &fakeUploader{err: ErrUploadTransportFailed}
	c, tl, w := newTestComposer(sender, up)

	msg, err := c.Compose(context.Background(), "see attached", attachment(), &staff5)
	require.NoError(t, err)
	assert.Equal(t, "see attached", msg.Text)
	assert.Empty(t, msg.AttachmentURL)
	assert.Len(t, tl.msgs, 1)

	require.Len(t, w.All(), 1)
	assert.ErrorIs(t, w.All()[0], ErrUploadTransportFailed)
}

func TestComposeUploadFailureWithoutText(t *testing.T) {
	sender := &fakeSender{state: StateJoined}
	c, tl, _ := newTestComposer(sender, &fakeUploader{err: ErrUploadTooLarge})

	_, err := c.Compose(context.Background(), "", attachment(), &staff5)
	require.ErrorIs(t, err, ErrComposeIncomplete)
	assert.ErrorIs(t, err, ErrUploadTooLarge)
	assert.Empty(t, sender.Sent())
	assert.Empty(t, tl.msgs)
}

func TestComposeUnknownUploadErrorIsTransportFailure(t *testing.T) {
	sender := &fakeSender{state: StateJoined}
	c, _, w := newTestComposer(sender, &fakeUploader{err: errors.New("boom")})

	_, err := c.Compose(context.Background(), "text", attachment(), &staff5)
	require.NoError(t, err)
	require.Len(t, w.All(), 1)
	assert.ErrorIs(t, w.All()[0], ErrUploadTransportFailed)
}

func TestComposeSendFailureDoesNotAppend(t *testing.T) {
	sender := &fakeSender{state: StateJoined, err: ErrChannelSendFailed}
	c, tl, _ := newTestComposer(sender, &fakeUploader{})

	_, err := c.Compose(context.Background(), "Hi", nil, &staff5)
	require.ErrorIs(t, err, ErrChannelSendFailed)
	assert.Empty(t, tl.msgs)
}

func TestComposeUsesRawReceiverID(t *testing.T) {
	sender := &fakeSender{state: StateJoined}
	c, _, _ := newTestComposer(sender, &fakeUploader{})

	receiver := Participant{ID: 42, Role: RoleMember, Ref: MemberRef(42)}
	_, err := c.Compose(context.Background(), "Hi", nil, &receiver)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), sender.Sent()[0].ReceiverID)
}
