package kafka

import (
	"time"

	"github.com/IBM/sarama"

	"github.com/ogurasousui/hr-records/internal/platform/config"
)

// NewSyncProducer は冪等な同期プロデューサーを生成します。
func NewSyncProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	sCfg := sarama.NewConfig()
	sCfg.ClientID = cfg.ClientID
	sCfg.Version = sarama.V3_3_2_0
	sCfg.Producer.Return.Successes = true
	sCfg.Producer.RequiredAcks = sarama.WaitForAll
	sCfg.Producer.Idempotent = true
	sCfg.Net.MaxOpenRequests = 1
	sCfg.Producer.Retry.Max = 5
	sCfg.Producer.Retry.Backoff = 200 * time.Millisecond

	return sarama.NewSyncProducer(cfg.Brokers, sCfg)
}
