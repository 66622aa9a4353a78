package model

import (
	"time"
)

// ConnectionStatus is the stored lifecycle state of a connection.
// Expired is never written to the store; it is computed from expires_at.
type ConnectionStatus string

const (
	StatusPending ConnectionStatus = "pending"
	StatusActive  ConnectionStatus = "active"
	StatusExpired ConnectionStatus = "expired"
)

// Connection is one psychologist-patient pairing lifecycle instance.
// Patient fields stay null until activation and are set exactly once,
// together with connected_at.
type Connection struct {
	ID               string           `db:"id" json:"id"`
	Code             string           `db:"code" json:"code"`
	PsychologistID   string           `db:"psychologist_id" json:"psychologistId"`
	PsychologistName string           `db:"psychologist_name" json:"psychologistName"`
	PatientID        *string          `db:"patient_id" json:"patientId,omitempty"`
	PatientName      *string          `db:"patient_name" json:"patientName,omitempty"`
	PatientEmail     *string          `db:"patient_email" json:"patientEmail,omitempty"`
	Status           ConnectionStatus `db:"status" json:"status"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	ConnectedAt      *time.Time       `db:"connected_at" json:"connectedAt,omitempty"`
	ExpiresAt        time.Time        `db:"expires_at" json:"expiresAt"`
}

type CreateConnectionParams struct {
	Code             string
	PsychologistID   string
	PsychologistName string
	ExpiresAt        time.Time
}

type ActivateConnectionParams struct {
	PatientID    string
	PatientName  string
	PatientEmail string
	ConnectedAt  time.Time
}

// EffectiveStatus resolves the computed expired view: a pending connection
// past its expiry reads as expired without ever being stored that way.
func (c *Connection) EffectiveStatus(now time.Time) ConnectionStatus {
	if c.Status == StatusPending && now.After(c.ExpiresAt) {
		return StatusExpired
	}
	return c.Status
}

// IsExpired reports whether the code's activation window has closed.
func (c *Connection) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

const codeLength = 6

// Validate checks the rules applied before persisting a new connection.
// All rules are evaluated so every violation is reported, not just the first.
func (c *Connection) Validate() (bool, []string) {
	var errs []string

	if len(c.Code) != codeLength {
		errs = append(errs, "code must be 6 characters")
	}
	if c.PsychologistID == "" {
		errs = append(errs, "psychologistId is required")
	}
	if c.PsychologistName == "" {
		errs = append(errs, "psychologistName is required")
	}

	return len(errs) == 0, errs
}
