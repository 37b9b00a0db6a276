package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/loginwatch/platform/internal/domain"
)

// Publisher sends a message to a topic. Satisfied by infra.KafkaProducer.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// PublishingAlertLog decorates an AlertLog, mirroring every appended alert
// to a message topic. The publish is fire-and-forget with a short timeout:
// a broker outage never fails or delays the append.
type PublishingAlertLog struct {
	inner     AlertLog
	publisher Publisher
	topic     string
	logger    *slog.Logger
}

// NewPublishingAlertLog wraps inner with a topic mirror.
func NewPublishingAlertLog(inner AlertLog, publisher Publisher, topic string, logger *slog.Logger) *PublishingAlertLog {
	return &PublishingAlertLog{inner: inner, publisher: publisher, topic: topic, logger: logger}
}

func (l *PublishingAlertLog) Append(ctx context.Context, a *domain.AnomalyAlert) error {
	if err := l.inner.Append(ctx, a); err != nil {
		return err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		raw, err := json.Marshal(a)
		if err != nil {
			l.logger.Error("marshal alert for publish", "alert_id", a.AlertID, "error", err)
			return
		}
		if err := l.publisher.Publish(ctx, l.topic, []byte(a.Username), raw); err != nil {
			l.logger.Warn("alert publish failed", "alert_id", a.AlertID, "error", err)
		}
	}()
	return nil
}

func (l *PublishingAlertLog) List(ctx context.Context) ([]*domain.AnomalyAlert, error) {
	return l.inner.List(ctx)
}
