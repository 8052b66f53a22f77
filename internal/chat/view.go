package chat

import (
	"context"
	"fmt"
	log "log/slog"
	"sort"
	"sync"
)

// DirectorySource 联系人目录
type DirectorySource interface {
	ListParticipants(ctx context.Context) ([]Participant, error)
}

// HistorySource 历史消息
type HistorySource interface {
	LoadHistory(ctx context.Context, meID, peerID uint64) ([]Message, error)
}

// Channel 视图独占的连接
type Channel interface {
	Sender
	Open(ctx context.Context, me SessionIdentity) error
	OnReceive(h func(Message))
	OnError(h func(error))
	Close() error
}

// ViewOptions 视图依赖
type ViewOptions struct {
	Directory DirectorySource
	History   HistorySource
	Uploader  AttachmentUploader
	Channel   Channel
	// Warn 非致命提示；为空时写日志
	Warn WarnFunc
	// OnChange 可见消息变化后回调，在锁外调用
	OnChange func(msgs []Message)
}

// View 一个聊天视图实例：挂载时解析身份并入房，卸载时释放连接
type View struct {
	opts ViewOptions

	mu           sync.Mutex
	me           SessionIdentity
	mounted      bool
	epoch        uint64
	participants []Participant
	selected     *Participant
	generation   uint64
	cancelFetch  context.CancelFunc
	messages     []Message
	composer     *Composer
}

func NewView(opts ViewOptions) *View {
	if opts.Warn == nil {
		opts.Warn = logWarn
	}
	return &View{opts: opts}
}

// Mount 身份或通道失败对视图是致命的，直接返回
func (v *View) Mount(ctx context.Context, sessionBlob []byte) error {
	me, err := ResolveIdentity(sessionBlob)
	if err != nil {
		return err
	}

	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return fmt.Errorf("view already mounted as %s #%d", v.me.Role, v.me.ID)
	}
	v.me = me
	v.mounted = true
	v.epoch++
	epoch := v.epoch
	v.mu.Unlock()

	v.opts.Channel.OnReceive(v.receive)
	v.opts.Channel.OnError(v.opts.Warn)
	if err = v.opts.Channel.Open(ctx, me); err != nil {
		v.mu.Lock()
		current := v.epoch == epoch
		if current {
			v.mounted = false
		}
		v.mu.Unlock()
		if current {
			v.clearHandlers()
		}
		return err
	}

	v.mu.Lock()
	if v.epoch != epoch {
		// 之后的挂载接管了通道
		v.mu.Unlock()
		return fmt.Errorf("%w: remounted while connecting", ErrViewNotMounted)
	}
	if !v.mounted {
		// Open 期间已被 Unmount，连接不能留给任何人
		v.mu.Unlock()
		v.clearHandlers()
		_ = v.opts.Channel.Close()
		return fmt.Errorf("%w: unmounted while connecting", ErrViewNotMounted)
	}
	v.composer = NewComposer(me, v.opts.Channel, v.opts.Uploader, v, v.opts.Warn)
	v.mu.Unlock()

	v.RefreshDirectory(ctx)
	return nil
}

// Identity 当前身份
func (v *View) Identity() SessionIdentity {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.me
}

// RefreshDirectory 失败时目录置空并提示
func (v *View) RefreshDirectory(ctx context.Context) []Participant {
	list, err := v.opts.Directory.ListParticipants(ctx)
	if err != nil {
		v.opts.Warn(err)
		list = nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return nil
	}
	v.participants = list
	return append([]Participant(nil), list...)
}

// Participants 当前目录快照
func (v *View) Participants() []Participant {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Participant(nil), v.participants...)
}

// Selected 当前选中的聊天对象
func (v *View) Selected() (Participant, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return Participant{}, false
	}
	return *v.selected, true
}

// Select 切换聊天对象并整体替换可见消息；过期的拉取结果会被丢弃
func (v *View) Select(ctx context.Context, ref ParticipantRef) error {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return ErrViewNotMounted
	}
	p, ok := FindParticipant(v.participants, ref)
	if !ok {
		v.mu.Unlock()
		return fmt.Errorf("%w: %s not in directory", ErrComposeNoReceiver, ref.Key())
	}
	v.generation++
	gen := v.generation
	if v.cancelFetch != nil {
		v.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancelFetch = cancel
	v.selected = &p
	v.messages = nil
	meID := v.me.ID
	v.mu.Unlock()

	msgs, err := v.opts.History.LoadHistory(fetchCtx, meID, p.ID)
	cancel()

	v.mu.Lock()
	if gen != v.generation || !v.mounted {
		v.mu.Unlock()
		log.Debug("discard stale history", "peer", ref.Key())
		return nil
	}
	v.cancelFetch = nil
	if err != nil {
		msgs = nil
	}
	// 拉取期间收到的实时消息不在历史里，需要并入
	v.messages = mergeLive(msgs, v.messages)
	snapshot := v.snapshotLocked()
	v.mu.Unlock()

	if err != nil {
		v.opts.Warn(err)
	}
	v.notify(snapshot)
	return nil
}

// Send 向当前选中对象发送
func (v *View) Send(ctx context.Context, text string, file *Attachment) (Message, error) {
	v.mu.Lock()
	composer := v.composer
	var receiver *Participant
	if v.selected != nil {
		p := *v.selected
		receiver = &p
	}
	v.mu.Unlock()

	if composer == nil {
		return Message{}, ErrComposeNotConnected
	}
	return composer.Compose(ctx, text, file, receiver)
}

// Append 本地乐观追加，不经过去重
func (v *View) Append(msg Message) {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	v.insertLocked(msg)
	snapshot := v.snapshotLocked()
	v.mu.Unlock()
	v.notify(snapshot)
}

// Messages 可见消息快照，按时间升序
func (v *View) Messages() []Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Unmount 丢弃所有状态并关闭连接，不能在入站回调中调用
func (v *View) Unmount() error {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return nil
	}
	v.mounted = false
	v.generation++
	if v.cancelFetch != nil {
		v.cancelFetch()
		v.cancelFetch = nil
	}
	v.messages = nil
	v.selected = nil
	v.participants = nil
	v.composer = nil
	v.mu.Unlock()

	v.clearHandlers()
	return v.opts.Channel.Close()
}

func (v *View) clearHandlers() {
	v.opts.Channel.OnReceive(nil)
	v.opts.Channel.OnError(nil)
}

// receive 入站处理器，读取视图当前身份而不是注册时的快照
func (v *View) receive(msg Message) {
	v.mu.Lock()
	if !v.mounted || !ShouldDeliver(msg, v.me) {
		v.mu.Unlock()
		return
	}
	v.insertLocked(msg)
	snapshot := v.snapshotLocked()
	v.mu.Unlock()
	v.notify(snapshot)
}

// insertLocked 按时间戳插入，同一时间戳保持到达顺序
func (v *View) insertLocked(msg Message) {
	idx := sort.Search(len(v.messages), func(i int) bool {
		return v.messages[i].Timestamp.After(msg.Timestamp)
	})
	v.messages = append(v.messages, Message{})
	copy(v.messages[idx+1:], v.messages[idx:])
	v.messages[idx] = msg
}

// mergeLive 把 live 中历史没有的消息并入，再整体排序
func mergeLive(history, live []Message) []Message {
	if len(live) == 0 {
		return history
	}
	merged := append(make([]Message, 0, len(history)+len(live)), history...)
	for _, m := range live {
		if !containsMessage(history, m) {
			merged = append(merged, m)
		}
	}
	sortByTimestamp(merged)
	return merged
}

func containsMessage(list []Message, m Message) bool {
	for _, x := range list {
		if x.SenderID == m.SenderID && x.SenderRole == m.SenderRole &&
			x.ReceiverID == m.ReceiverID && x.Text == m.Text &&
			x.AttachmentURL == m.AttachmentURL && x.Timestamp.Equal(m.Timestamp) {
			return true
		}
	}
	return false
}

func (v *View) snapshotLocked() []Message {
	return append([]Message(nil), v.messages...)
}

func (v *View) notify(snapshot []Message) {
	if v.opts.OnChange != nil {
		v.opts.OnChange(snapshot)
	}
}
