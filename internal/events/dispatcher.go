package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/davimurta/aurora-pairing-server/internal/model"
	redisclient "github.com/davimurta/aurora-pairing-server/internal/redis"
)

const (
	TypeConnectionCreated   = "connection.created"
	TypeConnectionActivated = "connection.activated"
)

// Event is the wire shape fanned out to subscribers (notifiers, analytics).
type Event struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// Dispatcher publishes pairing events to per-psychologist redis channels.
// The pairing service itself stays unaware of subscribers: callers hand it
// results after the fact.
type Dispatcher struct {
	redis *redisclient.Client
}

func NewDispatcher(redisClient *redisclient.Client) *Dispatcher {
	return &Dispatcher{redis: redisClient}
}

// ConnectionCreated announces a freshly generated code. The code itself is
// not published; subscribers only need to know a pairing was started.
func (d *Dispatcher) ConnectionCreated(ctx context.Context, conn *model.Connection) {
	d.publish(ctx, conn.PsychologistID, TypeConnectionCreated, map[string]any{
		"connectionId":   conn.ID,
		"psychologistId": conn.PsychologistID,
		"expiresAt":      conn.ExpiresAt,
	})
}

// ConnectionActivated announces a completed pairing.
func (d *Dispatcher) ConnectionActivated(ctx context.Context, conn *model.Connection) {
	data := map[string]any{
		"connectionId":   conn.ID,
		"psychologistId": conn.PsychologistID,
	}
	if conn.PatientID != nil {
		data["patientId"] = *conn.PatientID
	}
	if conn.ConnectedAt != nil {
		data["connectedAt"] = *conn.ConnectedAt
	}
	d.publish(ctx, conn.PsychologistID, TypeConnectionActivated, data)
}

// publish is fire-and-forget: event delivery must never fail a pairing
// request that already committed.
func (d *Dispatcher) publish(ctx context.Context, psychologistID, eventType string, data map[string]any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("marshal pairing event")
		return
	}

	event, err := json.Marshal(Event{
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       payload,
	})
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("marshal pairing event envelope")
		return
	}

	channel := redisclient.PairingChannel(psychologistID)
	if err := d.redis.Publish(ctx, channel, event).Err(); err != nil {
		log.Error().Err(err).Str("channel", channel).Str("type", eventType).Msg("publish pairing event")
		return
	}

	log.Debug().Str("channel", channel).Str("type", eventType).Msg("pairing event published")
}
