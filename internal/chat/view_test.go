package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	list []Participant
	err  error
}

func (s *stubDirectory) ListParticipants(context.Context) ([]Participant, error) {
	return s.list, s.err
}

// gatedHistory 每个对象的拉取可以单独放行
type gatedHistory struct {
	mu      sync.Mutex
	results map[uint64][]Message
	gates   map[uint64]chan struct{}
	started chan uint64
	err     error
}

func newGatedHistory() *gatedHistory {
	return &gatedHistory{
		results: make(map[uint64][]Message),
		gates:   make(map[uint64]chan struct{}),
		started: make(chan uint64, 8),
	}
}

func (g *gatedHistory) gate(peer uint64) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[peer] = ch
	return ch
}

func (g *gatedHistory) LoadHistory(_ context.Context, _, peer uint64) ([]Message, error) {
	g.mu.Lock()
	gate := g.gates[peer]
	res := g.results[peer]
	err := g.err
	g.mu.Unlock()

	g.started <- peer
	if gate != nil {
		<-gate
	}
	if err != nil {
		return []Message{}, err
	}
	return append([]Message(nil), res...), nil
}

var (
	memberSession = []byte(`{"memberId": 5, "name": "Ana"}`)
	staffSession  = []byte(`{"staffId": 5, "firstName": "Ivo", "lastName": "Kos"}`)
	directory     = []Participant{
		{ID: 5, DisplayName: "Ana", Role: RoleMember, Ref: MemberRef(5)},
		{ID: 7, DisplayName: "Luka", Role: RoleMember, Ref: MemberRef(7)},
		{ID: 5, DisplayName: "Ivo Kos", Role: RoleStaff, Ref: StaffRef(5)},
		{ID: 8, DisplayName: "Mia", Role: RoleAdmin, Ref: StaffRef(8)},
	}
)

func at(minute int) time.Time {
	return time.Date(2024, 5, 1, 10, minute, 0, 0, time.UTC)
}

func mountView(t *testing.T, blob []byte, hist HistorySource) (*View, *fakeChannel, *warnings) {
	t.Helper()
	ch := &fakeChannel{}
	w := &warnings{}
	v := NewView(ViewOptions{
		Directory: &stubDirectory{list: directory},
		History:   hist,
		Uploader:  &fakeUploader{url: "https://f/x"},
		Channel:   ch,
		Warn:      w.Warn,
	})
	require.NoError(t, v.Mount(context.Background(), blob))
	return v, ch, w
}

func TestViewMountFailures(t *testing.T) {
	ch := &fakeChannel{}
	v := NewView(ViewOptions{Directory: &stubDirectory{}, History: newGatedHistory(), Channel: ch})
	assert.ErrorIs(t, v.Mount(context.Background(), nil), ErrIdentityMissing)
	assert.ErrorIs(t, v.Mount(context.Background(), []byte(`{"name":"x"}`)), ErrIdentityAmbiguous)
	assert.Empty(t, ch.opened)

	ch.openErr = ErrChannelConnectFailed
	assert.ErrorIs(t, v.Mount(context.Background(), memberSession), ErrChannelConnectFailed)

	_, err := v.Send(context.Background(), "Hi", nil)
	assert.ErrorIs(t, err, ErrComposeNotConnected)
	assert.ErrorIs(t, v.Select(context.Background(), StaffRef(5)), ErrViewNotMounted)
}

func TestViewDirectoryFailureDegrades(t *testing.T) {
	w := &warnings{}
	v := NewView(ViewOptions{
		Directory: &stubDirectory{list: directory[:1], err: ErrDirectoryUnavailable},
		History:   newGatedHistory(),
		Channel:   &fakeChannel{},
		Warn:      w.Warn,
	})
	require.NoError(t, v.Mount(context.Background(), memberSession))
	assert.Empty(t, v.Participants())
	require.Len(t, w.All(), 1)
	assert.ErrorIs(t, w.All()[0], ErrDirectoryUnavailable)
}

func TestViewSelectSortsHistory(t *testing.T) {
	hist := newGatedHistory()
	hist.results[5] = []Message{
		{SenderID: 5, SenderRole: RoleMember, ReceiverID: 5, Text: "t1", Timestamp: at(1)},
		{SenderID: 5, SenderRole: RoleStaff, ReceiverID: 5, Text: "t2", Timestamp: at(2)},
	}
	v, _, _ := mountView(t, memberSession, hist)

	require.NoError(t, v.Select(context.Background(), StaffRef(5)))
	got := v.Messages()
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].Text)

	sel, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, StaffRef(5), sel.Ref)

	assert.ErrorIs(t, v.Select(context.Background(), StaffRef(99)), ErrComposeNoReceiver)
}

func TestViewStaleFetchDiscarded(t *testing.T) {
	hist := newGatedHistory()
	hist.results[7] = []Message{{SenderID: 7, SenderRole: RoleMember, ReceiverID: 5, Text: "from B", Timestamp: at(1)}}
	hist.results[8] = []Message{{SenderID: 8, SenderRole: RoleAdmin, ReceiverID: 5, Text: "from C", Timestamp: at(2)}}
	gateB := hist.gate(7)

	v, _, _ := mountView(t, staffSession, hist)

	done := make(chan error, 1)
	go func() { done <- v.Select(context.Background(), MemberRef(7)) }()
	require.Equal(t, uint64(7), <-hist.started)

	require.NoError(t, v.Select(context.Background(), StaffRef(8)))
	<-hist.started
	close(gateB)
	require.NoError(t, <-done)

	got := v.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "from C", got[0].Text)
	sel, _ := v.Selected()
	assert.Equal(t, StaffRef(8), sel.Ref)
}

func TestViewHistoryFailureShowsEmpty(t *testing.T) {
	hist := newGatedHistory()
	hist.err = ErrHistoryUnavailable
	v, _, w := mountView(t, memberSession, hist)

	require.NoError(t, v.Select(context.Background(), StaffRef(5)))
	assert.Empty(t, v.Messages())
	assert.ErrorIs(t, w.All()[len(w.All())-1], ErrHistoryUnavailable)

	// 空会话里仍可发送
	_, err := v.Send(context.Background(), "still here?", nil)
	require.NoError(t, err)
	assert.Len(t, v.Messages(), 1)
}

func TestViewEchoSuppressedForSender(t *testing.T) {
	hist := newGatedHistory()
	v, ch, _ := mountView(t, memberSession, hist)
	require.NoError(t, v.Select(context.Background(), StaffRef(5)))

	sent, err := v.Send(context.Background(), "Hi", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), sent.ReceiverID)

	// 中继按 receiver_id=5 推回 Member #5 的房间
	ch.Deliver(sent)

	got := v.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "Hi", got[0].Text)
	assert.Equal(t, []Message{sent}, ch.Sent())
}

func TestViewSameIDOtherRoleDelivered(t *testing.T) {
	v, ch, _ := mountView(t, staffSession, newGatedHistory())
	require.NoError(t, v.Select(context.Background(), MemberRef(5)))

	ch.Deliver(Message{SenderID: 5, SenderRole: RoleMember, ReceiverID: 5, Text: "Hi", Timestamp: at(3)})
	ch.Deliver(Message{SenderID: 7, SenderRole: RoleMember, ReceiverID: 6, Text: "not mine", Timestamp: at(4)})

	got := v.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "Hi", got[0].Text)
}

func TestViewLiveEventsKeepTimestampOrder(t *testing.T) {
	v, ch, _ := mountView(t, memberSession, newGatedHistory())
	require.NoError(t, v.Select(context.Background(), StaffRef(5)))

	ch.Deliver(Message{SenderID: 5, SenderRole: RoleStaff, ReceiverID: 5, Text: "late", Timestamp: at(9)})
	ch.Deliver(Message{SenderID: 5, SenderRole: RoleStaff, ReceiverID: 5, Text: "early", Timestamp: at(1)})

	got := v.Messages()
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].Text)
	assert.Equal(t, "late", got[1].Text)
}

func TestViewUnmountDropsLateResults(t *testing.T) {
	hist := newGatedHistory()
	hist.results[5] = []Message{{SenderID: 5, SenderRole: RoleStaff, ReceiverID: 5, Text: "late", Timestamp: at(1)}}
	gate := hist.gate(5)
	v, ch, _ := mountView(t, memberSession, hist)

	done := make(chan error, 1)
	go func() { done <- v.Select(context.Background(), StaffRef(5)) }()
	<-hist.started

	require.NoError(t, v.Unmount())
	close(gate)
	require.NoError(t, <-done)

	assert.Empty(t, v.Messages())
	assert.Equal(t, 1, ch.closed)
	assert.Equal(t, StateDisconnected, ch.State())

	ch.Deliver(Message{SenderID: 5, SenderRole: RoleStaff, ReceiverID: 5, Text: "after"})
	assert.Empty(t, v.Messages())
	assert.NoError(t, v.Unmount())
}

func TestViewOnChange(t *testing.T) {
	var mu sync.Mutex
	var last []Message
	ch := &fakeChannel{}
	v := NewView(ViewOptions{
		Directory: &stubDirectory{list: directory},
		History:   newGatedHistory(),
		Channel:   ch,
		OnChange: func(msgs []Message) {
			mu.Lock()
			last = msgs
			mu.Unlock()
		},
	})
	require.NoError(t, v.Mount(context.Background(), memberSession))
	require.NoError(t, v.Select(context.Background(), StaffRef(5)))

	ch.Deliver(Message{SenderID: 5, SenderRole: RoleStaff, ReceiverID: 5, Text: "ping", Timestamp: at(1)})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, last, 1)
	assert.Equal(t, "ping", last[0].Text)
}

func TestViewMountFailureClearsHandlers(t *testing.T) {
	ch := &fakeChannel{openErr: ErrChannelConnectFailed}
	w := &warnings{}
	v := NewView(ViewOptions{Directory: &stubDirectory{list: directory}, History: newGatedHistory(), Channel: ch, Warn: w.Warn})

	require.ErrorIs(t, v.Mount(context.Background(), memberSession), ErrChannelConnectFailed)
	onReceive, onErr := ch.handlers()
	assert.Nil(t, onReceive)
	assert.Nil(t, onErr)

	// 失败后可以重新挂载
	ch.openErr = nil
	require.NoError(t, v.Mount(context.Background(), memberSession))
	onReceive, onErr = ch.handlers()
	assert.NotNil(t, onReceive)
	assert.NotNil(t, onErr)

	require.NoError(t, v.Unmount())
	onReceive, onErr = ch.handlers()
	assert.Nil(t, onReceive)
	assert.Nil(t, onErr)
}

func TestViewUnmountWhileConnecting(t *testing.T) {
	ch := &fakeChannel{openGate: make(chan struct{}), openStarted: make(chan struct{}, 1)}
	v := NewView(ViewOptions{Directory: &stubDirectory{list: directory}, History: newGatedHistory(), Channel: ch})

	mounted := make(chan error, 1)
	go func() { mounted <- v.Mount(context.Background(), memberSession) }()
	<-ch.openStarted

	require.NoError(t, v.Unmount())
	assert.Equal(t, 1, ch.closeCount())
	close(ch.openGate)

	select {
	case err := <-mounted:
		require.ErrorIs(t, err, ErrViewNotMounted)
	case <-time.After(2 * time.Second):
		t.Fatal("Mount did not return")
	}
	assert.Equal(t, 2, ch.closeCount())
	assert.Equal(t, StateDisconnected, ch.State())
	onReceive, onErr := ch.handlers()
	assert.Nil(t, onReceive)
	assert.Nil(t, onErr)

	_, err := v.Send(context.Background(), "Hi", nil)
	assert.ErrorIs(t, err, ErrComposeNotConnected)
	assert.Empty(t, ch.Sent())
}

func TestViewLiveMessageDuringHistoryFetch(t *testing.T) {
	hist := newGatedHistory()
	hist.results[7] = []Message{
		{SenderID: 5, SenderRole: RoleMember, ReceiverID: 7, Text: "earlier", Timestamp: at(1)},
		{SenderID: 7, SenderRole: RoleStaff, ReceiverID: 5, Text: "reply", Timestamp: at(3)},
	}
	gate := hist.gate(7)

	dir := append(append([]Participant(nil), directory...),
		Participant{ID: 7, DisplayName: "Tea", Role: RoleStaff, Ref: StaffRef(7)})
	ch := &fakeChannel{}
	v := NewView(ViewOptions{Directory: &stubDirectory{list: dir}, History: hist, Channel: ch, Warn: (&warnings{}).Warn})
	require.NoError(t, v.Mount(context.Background(), memberSession))

	done := make(chan error, 1)
	go func() { done <- v.Select(context.Background(), StaffRef(7)) }()
	require.Equal(t, uint64(7), <-hist.started)

	live := Message{SenderID: 7, SenderName: "Tea", SenderRole: RoleStaff, ReceiverID: 5, Text: "live", Timestamp: at(5)}
	ch.Deliver(live)
	// 历史里已有的消息再次推送时只保留一份
	ch.Deliver(hist.results[7][1])
	require.Len(t, v.Messages(), 2)

	close(gate)
	require.NoError(t, <-done)

	got := v.Messages()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"earlier", "reply", "live"}, []string{got[0].Text, got[1].Text, got[2].Text})
}

func TestViewLiveMessageKeptWhenHistoryFails(t *testing.T) {
	hist := newGatedHistory()
	hist.err = ErrHistoryUnavailable
	gate := hist.gate(5)
	v, ch, w := mountView(t, memberSession, hist)

	done := make(chan error, 1)
	go func() { done <- v.Select(context.Background(), StaffRef(5)) }()
	<-hist.started

	ch.Deliver(Message{SenderID: 5, SenderRole: RoleStaff, ReceiverID: 5, Text: "still here", Timestamp: at(2)})
	close(gate)
	require.NoError(t, <-done)

	got := v.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "still here", got[0].Text)
	assert.ErrorIs(t, w.All()[len(w.All())-1], ErrHistoryUnavailable)
}
