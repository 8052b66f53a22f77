package service

import (
	"context"
	log "log/slog"
	"sync"
	"time"

	"GymChat/internal/api/dto"
	"GymChat/internal/pkg/kafka"
	"GymChat/internal/pkg/mongo"
)

// MessageService 中继对一条已校验消息的处理
type MessageService interface {
	// Accept 持久化并推送到接收者房间，返回实际下发的消息
	Accept(ctx context.Context, msg *dto.MessageDTO) (*dto.MessageDTO, error)
	// History 两个数字 id 之间的会话，时间升序
	History(ctx context.Context, userA, userB uint64) ([]*dto.MessageDTO, error)
	Close()
}

// UploadClaimer 消息引用附件时调用
type UploadClaimer interface {
	Claim(ctx context.Context, fileURL string)
}

type messageServiceImpl struct {
	messageRepo mongo.MessageRepo
	hub         *Hub
	claimer     UploadClaimer
	producer    kafka.MessageProducer

	retryChan chan *mongo.Message
	retryWait time.Duration
	wg        sync.WaitGroup
	stopChan  chan struct{}
	stopOnce  sync.Once
	now       func() time.Time
}

// NewMessageService 初始化服务并启动异步补写工作池
func NewMessageService(
	messageRepo mongo.MessageRepo,
	hub *Hub,
	claimer UploadClaimer,
	producer kafka.MessageProducer,
	workerCount int,
) MessageService {
	if workerCount <= 0 {
		workerCount = 1
	}
	if producer == nil {
		producer = kafka.NopProducer{}
	}
	s := &messageServiceImpl{
		messageRepo: messageRepo,
		hub:         hub,
		claimer:     claimer,
		producer:    producer,
		retryChan:   make(chan *mongo.Message, 2048),
		retryWait:   time.Second,
		stopChan:    make(chan struct{}),
		now:         time.Now,
	}

	s.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go s.calibrationWorker()
	}
	return s
}

func (s *messageServiceImpl) Accept(ctx context.Context, msg *dto.MessageDTO) (*dto.MessageDTO, error) {
	if msg == nil || msg.ReceiverID == 0 || msg.SenderID == 0 {
		return nil, ErrParamInvalid
	}
	if msg.Message == "" && msg.FileURL == "" {
		return nil, ErrParamInvalid
	}

	out := *msg
	if out.Timestamp.IsZero() {
		out.Timestamp = s.now().UTC()
	}

	model := toMessageModel(&out)
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	err := s.messageRepo.SaveMessage(writeCtx, model)
	cancel()
	if err != nil {
		log.WarnContext(ctx, "save message failed, queue for retry", "err", err)
		select {
		case s.retryChan <- model:
		default:
			log.ErrorContext(ctx, "retry queue full, message not persisted",
				"sender", out.SenderID, "receiver", out.ReceiverID)
		}
	}

	if s.claimer != nil {
		s.claimer.Claim(ctx, out.FileURL)
	}
	s.producer.Emit(ctx, &out)

	frame, err := dto.NewEvent(dto.EventReceiveMessage, &out)
	if err != nil {
		return nil, err
	}
	if err = s.hub.Publish(ctx, out.ReceiverID, frame); err != nil {
		log.ErrorContext(ctx, "publish message failed", "receiver", out.ReceiverID, "err", err)
		return nil, UnExpectedError
	}
	return &out, nil
}

func (s *messageServiceImpl) History(ctx context.Context, userA, userB uint64) ([]*dto.MessageDTO, error) {
	if userA == 0 || userB == 0 {
		return nil, ErrParamInvalid
	}
	models, err := s.messageRepo.GetConversation(ctx, userA, userB)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.MessageDTO, 0, len(models))
	for _, m := range models {
		res = append(res, toMessageDTO(m))
	}
	return res, nil
}

func (s *messageServiceImpl) Close() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	log.Info("MessageService shut down gracefully")
}

func (s *messageServiceImpl) calibrationWorker() {
	defer s.wg.Done()
	for {
		select {
		case msg := <-s.retryChan:
			s.retrySave(msg)
		case <-s.stopChan:
			return
		}
	}
}

func (s *messageServiceImpl) retrySave(msg *mongo.Message) {
	backoff := s.retryWait
	var err error
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = s.messageRepo.SaveMessage(ctx, msg)
		cancel()
		if err == nil {
			return
		}
		select {
		case <-time.After(backoff):
		case <-s.stopChan:
			return
		}
		backoff *= 2
	}
	log.Error("message dropped after retries",
		"sender", msg.SenderID, "receiver", msg.ReceiverID, "err", err)
}

func toMessageModel(m *dto.MessageDTO) *mongo.Message {
	return &mongo.Message{
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		SenderRole: m.SenderRole,
		ReceiverID: m.ReceiverID,
		Message:    m.Message,
		FileURL:    m.FileURL,
		Timestamp:  m.Timestamp,
	}
}

func toMessageDTO(m *mongo.Message) *dto.MessageDTO {
	return &dto.MessageDTO{
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		SenderRole: m.SenderRole,
		ReceiverID: m.ReceiverID,
		Message:    m.Message,
		FileURL:    m.FileURL,
		Timestamp:  m.Timestamp,
	}
}
