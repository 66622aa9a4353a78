package audit

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventCodeGenerate    EventType = "code_generate"
	EventCodeActivate    EventType = "code_activate"
	EventActivateFailure EventType = "activate_failure"
	EventRateLimitExceed EventType = "rate_limit_exceeded"
)

type Event struct {
	Type           EventType
	PsychologistID string
	PatientID      string
	IP             string
	Details        map[string]interface{}
}

func Log(event Event) {
	logger := log.With().
		Str("audit", "pairing").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.PsychologistID != "" {
		logger = logger.With().Str("psychologist_id", event.PsychologistID).Logger()
	}
	if event.PatientID != "" {
		logger = logger.With().Str("patient_id", event.PatientID).Logger()
	}
	if event.IP != "" {
		logger = logger.With().Str("ip", event.IP).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("pairing audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
