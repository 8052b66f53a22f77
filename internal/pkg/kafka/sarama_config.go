package kafka

import (
	"time"

	"GymChat/internal/api/config"

	"github.com/IBM/sarama"
)

// newProducerConfig 消息镜像：同一会话有序、不重复，允许小批量延迟
func newProducerConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = "gymchat-relay"
	c.Version = sarama.V2_8_0_0

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	// 幂等生产要求 acks=all 且单连接单请求
	c.Producer.Idempotent = true
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Net.MaxOpenRequests = 1
	c.Producer.Retry.Max = 5
	c.Producer.Retry.Backoff = 200 * time.Millisecond

	c.Producer.Compression = sarama.CompressionSnappy
	c.Producer.Flush.Frequency = 50 * time.Millisecond
	c.Producer.Flush.Messages = 64

	c.Producer.Return.Successes = false
	c.Producer.Return.Errors = true
	// 会话键哈希到固定分区
	c.Producer.Partitioner = sarama.NewHashPartitioner
	return c
}
