package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"GymChat/internal/api/dto"
	"GymChat/internal/model"
	"GymChat/internal/pkg/mongo"
)

type memRepo struct {
	mu       sync.Mutex
	saved    []*mongo.Message
	failures int
	saveErr  error
}

func (r *memRepo) SaveMessage(_ context.Context, msg *mongo.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("mongo down")
	}
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, msg)
	return nil
}

func (r *memRepo) GetConversation(_ context.Context, a, b uint64) ([]*mongo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*mongo.Message, 0)
	for _, m := range r.saved {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) Saved() []*mongo.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*mongo.Message(nil), r.saved...)
}

// recorder 记录投递到的帧
type recorder struct {
	mu     sync.Mutex
	frames [][]byte
	full   bool
}

func (r *recorder) Enqueue(frame []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return false
	}
	r.frames = append(r.frames, frame)
	return true
}

func (r *recorder) Frames() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.frames...)
}

// syncBroker 直接同步投递，测试里不需要 Run
type syncBroker struct {
	deliver DeliverFunc
	err     error
}

func (b *syncBroker) Publish(_ context.Context, roomID uint64, payload []byte) error {
	if b.err != nil {
		return b.err
	}
	b.deliver(roomID, payload)
	return nil
}

func (b *syncBroker) Run(ctx context.Context, deliver DeliverFunc) error {
	<-ctx.Done()
	return nil
}

func newSyncHub() (*Hub, *syncBroker) {
	b := &syncBroker{}
	h := NewHub(b)
	b.deliver = h.Deliver
	return h, b
}

type claims struct {
	mu   sync.Mutex
	urls []string
}

func (c *claims) Claim(_ context.Context, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls = append(c.urls, url)
}

type capturingProducer struct {
	mu     sync.Mutex
	events []*dto.MessageDTO
}

func (p *capturingProducer) Emit(_ context.Context, msg *dto.MessageDTO) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg)
}

func (p *capturingProducer) Close() error { return nil }

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) UploadFile(_ context.Context, name string, r io.Reader, _ int64, _, _ string) (string, error) {
	if s.failPut {
		return "", errors.New("minio down")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = data
	return name, nil
}

func (s *memStore) DeleteFile(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	return nil
}

func (s *memStore) PublicURL(name string) string {
	return "http://cdn.test/chat/" + name
}

func (s *memStore) ObjectName(url string) (string, bool) {
	return strings.CutPrefix(url, "http://cdn.test/chat/")
}

func (s *memStore) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[name]
	return ok
}

type memPending struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemPending() *memPending {
	return &memPending{m: make(map[string]string)}
}

func (p *memPending) Put(_ context.Context, key, meta string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[key] = meta
	return nil
}

func (p *memPending) Remove(_ context.Context, key string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.m[key]
	delete(p.m, key)
	return ok, nil
}

func (p *memPending) All(context.Context) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.m))
	for k, v := range p.m {
		out[k] = v
	}
	return out, nil
}

type stubMembers struct {
	list []*model.Member
	err  error
}

func (s *stubMembers) ListMembers(context.Context) ([]*model.Member, error) { return s.list, s.err }

func (s *stubMembers) GetMemberById(_ context.Context, id uint64) (*model.Member, error) {
	for _, m := range s.list {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

type stubStaff struct {
	list []*model.StaffMember
	err  error
}

func (s *stubStaff) ListStaffMembers(context.Context) ([]*model.StaffMember, error) {
	return s.list, s.err
}

func (s *stubStaff) GetStaffMemberById(_ context.Context, id uint64) (*model.StaffMember, error) {
	for _, m := range s.list {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}
