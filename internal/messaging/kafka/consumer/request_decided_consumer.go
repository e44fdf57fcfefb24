package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spa-portal/internal/events"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	notificationListTTL = 30 * 24 * time.Hour
	notificationListCap = 100
)

// NotificationListKey is the per-employee inbox of decision notifications.
func NotificationListKey(employeeCode string) string {
	return "notifications:" + employeeCode
}

// ConsumeRequestDecided turns decision events into per-employee
// notifications in redis. A SETNX dedupe key keeps redelivered messages from
// producing duplicate entries.
func ConsumeRequestDecided(
	ctx context.Context,
	reader *kafkago.Reader,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.request_decided")
	log.Info("request decided consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("request decided consumer stopped")
				return
			}
			log.Error("fetch request decided message failed", zap.Error(err))
			continue
		}

		var event events.RequestDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode request_decided event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		dedupeKey := fmt.Sprintf("notify:dedup:%s:%s", event.RecordID, event.Status)
		stored, err := rdb.SetNX(ctx, dedupeKey, 1, notificationListTTL).Result()
		if err != nil {
			log.Error("notification dedupe check failed",
				zap.String("record_id", event.RecordID),
				zap.Error(err),
			)
			continue
		}
		if !stored {
			log.Warn("request decision already notified, skipping",
				zap.String("record_id", event.RecordID),
				zap.String("status", event.Status),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		listKey := NotificationListKey(event.EmployeeCode)
		pipe := rdb.TxPipeline()
		pipe.LPush(ctx, listKey, msg.Value)
		pipe.LTrim(ctx, listKey, 0, notificationListCap-1)
		pipe.Expire(ctx, listKey, notificationListTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Error("store decision notification failed",
				zap.String("employee_code", event.EmployeeCode),
				zap.Error(err),
			)
			// Drop the dedupe key so a redelivery can retry the write.
			_ = rdb.Del(ctx, dedupeKey).Err()
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit request decided message failed", zap.Error(err))
			continue
		}

		log.Info("decision notification stored",
			zap.String("record_id", event.RecordID),
			zap.String("employee_code", event.EmployeeCode),
			zap.String("status", event.Status),
		)
	}
}
