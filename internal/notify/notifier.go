package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

// Notifier публикует события движка во внешнюю шину: итог прогона —
// для админов тенанта, бизнес-события вебхуков — для остального продукта.
// Доставка (email, push) — забота потребителей топиков, не движка.
type Notifier struct {
	sp          sarama.SyncProducer
	topicSync   string
	topicEvents string
	source      string
	log         zerolog.Logger
}

type Config struct {
	TopicSyncResults string
	TopicHREvents    string
	Source           string
}

func NewNotifier(sp sarama.SyncProducer, cfg Config, log zerolog.Logger) *Notifier {
	return &Notifier{
		sp:          sp,
		topicSync:   cfg.TopicSyncResults,
		topicEvents: cfg.TopicHREvents,
		source:      cfg.Source,
		log:         log.With().Str("component", "Notifier").Logger(),
	}
}

func (n *Notifier) Close() error {
	if n == nil || n.sp == nil {
		return nil
	}
	return n.sp.Close()
}

type syncCompletedMessage struct {
	ConfigID   string        `json:"config_id"`
	CompanyID  string        `json:"company_id"`
	SystemType string        `json:"system_type"`
	Result     dto.SyncResult `json:"result"`
}

// SyncCompleted публикует итог прогона, ключ — id конфигурации.
func (n *Notifier) SyncCompleted(ctx context.Context, cfg dto.HRSystemConfig, result dto.SyncResult) error {
	body, err := json.Marshal(syncCompletedMessage{
		ConfigID:   cfg.ID,
		CompanyID:  cfg.CompanyID,
		SystemType: string(cfg.SystemType),
		Result:     result,
	})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	return n.send(ctx, n.topicSync, cfg.ID, body, map[string]string{
		"event-kind":   "sync.completed",
		"source":       n.source,
		"content-type": "application/json",
	})
}

type webhookProcessedMessage struct {
	ConfigID   string             `json:"config_id"`
	CompanyID  string             `json:"company_id"`
	SystemType string             `json:"system_type"`
	Payload    dto.WebhookPayload `json:"payload"`
}

// WebhookProcessed публикует нормализованное событие вебхука.
func (n *Notifier) WebhookProcessed(ctx context.Context, cfg dto.HRSystemConfig, payload dto.WebhookPayload) error {
	body, err := json.Marshal(webhookProcessedMessage{
		ConfigID:   cfg.ID,
		CompanyID:  cfg.CompanyID,
		SystemType: string(cfg.SystemType),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	return n.send(ctx, n.topicEvents, cfg.ID, body, map[string]string{
		"event-kind":   string(payload.EventType),
		"source":       n.source,
		"content-type": "application/json",
	})
}

func (n *Notifier) send(_ context.Context, topic, key string, value []byte, headers map[string]string) error {
	if n == nil || n.sp == nil {
		return errors.New("sync producer is not initialized")
	}

	var hs []sarama.RecordHeader
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(value),
		Headers: hs,
	}

	part, off, err := n.sp.SendMessage(msg)
	if err != nil {
		n.log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Int("bytes", len(value)).
			Msg("failed to send kafka message")
		return fmt.Errorf("send kafka message: %w", err)
	}

	n.log.Info().
		Str("topic", topic).
		Str("key", key).
		Int32("partition", part).
		Int64("offset", off).
		Int("bytes", len(value)).
		Msg("kafka message sent")
	return nil
}
