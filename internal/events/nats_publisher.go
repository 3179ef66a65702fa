package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/telemetry"
	"github.com/nats-io/nats.go"
)

const subjectPrefix = "ats.activity."

var tracer = telemetry.Tracer("hireloop/events")

// Subject is the NATS subject an activity action is published on.
func Subject(action models.ActivityAction) string {
	return subjectPrefix + string(action)
}

// ActivityPublisher forwards activity entries to NATS for downstream consumers
// (reporting, integrations). It satisfies notify.Publisher.
type ActivityPublisher struct {
	nc *nats.Conn
}

func NewActivityPublisher(nc *nats.Conn) *ActivityPublisher {
	return &ActivityPublisher{nc: nc}
}

func (p *ActivityPublisher) Publish(ctx context.Context, e *models.ActivityEntry) error {
	_, span := tracer.Start(ctx, "ActivityPublisher.Publish")
	defer span.End()

	data, err := json.Marshal(e)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshaling activity: %w", err)
	}

	subject := Subject(e.Action)
	span.SetAttributes(
		telemetry.String("nats.subject", subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.nc.Publish(subject, data); err != nil {
		span.RecordError(err)
		return fmt.Errorf("publishing activity: %w", err)
	}
	return nil
}

func (p *ActivityPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
