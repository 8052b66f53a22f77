package kafka

import (
	"context"
	log "log/slog"
	"strconv"
	"sync"

	"GymChat/internal/api/config"
	"GymChat/internal/api/dto"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// MessageProducer 把中继接受的消息投递给下游
type MessageProducer interface {
	Emit(ctx context.Context, msg *dto.MessageDTO)
	Close() error
}

type saramaProducer struct {
	producer sarama.AsyncProducer
	topic    string
	wg       sync.WaitGroup
}

// NewMessageProducer 未配置 broker 时返回空实现
func NewMessageProducer(cfg config.KafkaConfig) (MessageProducer, error) {
	if len(cfg.Brokers) == 0 {
		log.Info("Kafka brokers not configured, message events disabled")
		return NopProducer{}, nil
	}

	p, err := sarama.NewAsyncProducer(cfg.Brokers, newProducerConfig(cfg))
	if err != nil {
		return nil, err
	}

	s := &saramaProducer{producer: p, topic: cfg.Topic}
	s.wg.Add(1)
	go s.drainErrors()
	log.Info("Kafka message producer started", "topic", cfg.Topic)
	return s, nil
}

func (s *saramaProducer) Emit(ctx context.Context, msg *dto.MessageDTO) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.ErrorContext(ctx, "marshal message event failed", "err", err)
		return
	}
	s.producer.Input() <- &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(conversationKey(msg.SenderID, msg.ReceiverID)),
		Value: sarama.ByteEncoder(data),
	}
}

func (s *saramaProducer) drainErrors() {
	defer s.wg.Done()
	for perr := range s.producer.Errors() {
		log.Error("Kafka produce failed", "topic", perr.Msg.Topic, "err", perr.Err)
	}
}

func (s *saramaProducer) Close() error {
	err := s.producer.Close()
	s.wg.Wait()
	return err
}

// conversationKey 与方向无关
func conversationKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatUint(a, 10) + "_" + strconv.FormatUint(b, 10)
}

type NopProducer struct{}

func (NopProducer) Emit(context.Context, *dto.MessageDTO) {}

func (NopProducer) Close() error { return nil }
