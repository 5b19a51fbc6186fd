package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/hr-records/internal/core/employee"
)

const hireDateLayout = "2006-01-02"

// Publisher は社員イベントを Kafka に書き込む employee.EventPublisher の実装です。
type Publisher struct {
	sp        sarama.SyncProducer
	topic     string
	source    string
	log       zerolog.Logger
	messageID func() uuid.UUID
}

// NewPublisher は Publisher を生成します。
func NewPublisher(sp sarama.SyncProducer, topic, source string, log zerolog.Logger) *Publisher {
	return &Publisher{
		sp:        sp,
		topic:     topic,
		source:    source,
		log:       log.With().Str("component", "kafka.Publisher").Logger(),
		messageID: uuid.New,
	}
}

// Close は内部のプロデューサーを閉じます。
func (p *Publisher) Close() error {
	if p == nil || p.sp == nil {
		return nil
	}
	return p.sp.Close()
}

// Publish はイベントを社員 ID をキーとして送信します。
func (p *Publisher) Publish(ctx context.Context, event employee.Event) error {
	envelope := Envelope[*EmployeePayload]{
		Kind:       string(event.Kind),
		MessageID:  p.messageID(),
		EmployeeID: strconv.FormatInt(event.EmployeeID, 10),
		Payload:    toPayload(event.Employee),
		Timestamp:  event.OccurredAt.UTC(),
		Source:     p.source,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", event.Kind, err)
	}

	return p.send(ctx, envelope.EmployeeID, body, map[string]string{
		"event-kind":   envelope.Kind,
		"message-id":   envelope.MessageID.String(),
		"source":       p.source,
		"content-type": "application/json",
	})
}

func (p *Publisher) send(_ context.Context, key string, value []byte, headers map[string]string) error {
	if p == nil || p.sp == nil {
		return errors.New("sync producer is not initialized")
	}

	hs := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(value),
		Headers: hs,
	}

	part, off, err := p.sp.SendMessage(msg)
	if err != nil {
		p.log.Error().
			Err(err).
			Str("topic", p.topic).
			Str("key", key).
			Int("bytes", len(value)).
			Msg("failed to send kafka message")
		return fmt.Errorf("send kafka message: %w", err)
	}

	p.log.Debug().
		Str("topic", p.topic).
		Str("key", key).
		Int32("partition", part).
		Int64("offset", off).
		Msg("kafka message sent")
	return nil
}

func toPayload(e *employee.Employee) *EmployeePayload {
	if e == nil {
		return nil
	}
	return &EmployeePayload{
		ID:                   e.ID,
		FirstName:            e.FirstName,
		OtherNames:           e.OtherNames,
		FirstSurname:         e.FirstSurname,
		SecondSurname:        e.SecondSurname,
		IdentificationType:   e.IdentificationType.Abbreviation,
		IdentificationNumber: e.IdentificationNumber,
		Country:              e.Country.Name,
		Area:                 e.Area.Name,
		Email:                e.Email,
		Status:               string(e.Status),
		HireDate:             e.HireDate.Format(hireDateLayout),
		RegisteredAt:         e.RegisteredAt,
		EditedAt:             e.EditedAt,
	}
}
