package chat

import (
	"context"
	"sync"
)

type fakeSender struct {
	mu    sync.Mutex
	state ConnState
	err   error
	sent  []Message
}

func (f *fakeSender) Send(msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) State() ConnState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSender) Sent() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.sent...)
}

type fakeUploader struct {
	url   string
	err   error
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, _ *Attachment) (string, error) {
	f.calls++
	return f.url, f.err
}

type sliceTimeline struct {
	msgs []Message
}

func (s *sliceTimeline) Append(msg Message) { s.msgs = append(s.msgs, msg) }

type warnings struct {
	mu   sync.Mutex
	errs []error
}

func (w *warnings) Warn(err error) {
	w.mu.Lock()
	w.errs = append(w.errs, err)
	w.mu.Unlock()
}

func (w *warnings) All() []error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]error(nil), w.errs...)
}

// fakeChannel 内存通道，Deliver 模拟中继推送
type fakeChannel struct {
	fakeSender
	openErr error
	// openGate 非空时 Open 会在 openStarted 通知后阻塞到它关闭
	openGate    chan struct{}
	openStarted chan struct{}
	opened      []SessionIdentity
	closed      int
	handlerMu   sync.Mutex
	handler     func(Message)
	onErr       func(error)
}

func (f *fakeChannel) Open(_ context.Context, me SessionIdentity) error {
	if f.openGate != nil {
		f.openStarted <- struct{}{}
		<-f.openGate
	}
	if f.openErr != nil {
		return f.openErr
	}
	f.mu.Lock()
	f.state = StateJoined
	f.opened = append(f.opened, me)
	f.mu.Unlock()
	return nil
}

func (f *fakeChannel) OnReceive(h func(Message)) {
	f.handlerMu.Lock()
	f.handler = h
	f.handlerMu.Unlock()
}

func (f *fakeChannel) OnError(h func(error)) {
	f.handlerMu.Lock()
	f.onErr = h
	f.handlerMu.Unlock()
}

func (f *fakeChannel) handlers() (func(Message), func(error)) {
	f.handlerMu.Lock()
	defer f.handlerMu.Unlock()
	return f.handler, f.onErr
}

func (f *fakeChannel) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	f.state = StateDisconnected
	f.closed++
	f.mu.Unlock()
	return nil
}

func (f *fakeChannel) Deliver(msg Message) {
	f.handlerMu.Lock()
	h := f.handler
	f.handlerMu.Unlock()
	if h != nil {
		h(msg)
	}
}
