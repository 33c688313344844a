package consumer

import (
	"context"
	"encoding/json"

	"github.com/heyyrintu/hrms-sub003/internal/bootstrap"
	"github.com/heyyrintu/hrms-sub003/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeRunLifecycle turns payroll run lifecycle events into audit log
// entries. Malformed messages are committed and dropped so one bad
// payload cannot wedge the group.
func ConsumeRunLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.runlifecycle")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("consume run lifecycle failed", zap.Error(err))
			continue
		}

		var event events.PayrollRunLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode run lifecycle event failed", zap.Error(err))
			if commitErr := reader.CommitMessages(ctx, msg); commitErr != nil {
				log.Error("commit invalid run lifecycle event failed", zap.Error(commitErr))
			}
			continue
		}

		audit.Log(ctx, bootstrap.AuditLog{
			Action:  event.EventType,
			Message: "payroll run lifecycle event",
			Meta: map[string]any{
				"run_id":          event.RunID,
				"company_id":      event.CompanyID,
				"month":           event.Month,
				"year":            event.Year,
				"processed_count": event.ProcessedCount,
				"error_count":     event.ErrorCount,
				"total_net":       event.TotalNet,
				"actor_id":        event.ActorID,
			},
		})

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit run lifecycle event failed", zap.Error(err))
		}
	}
}
