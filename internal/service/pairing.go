package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/davimurta/aurora-pairing-server/internal/config"
	apperrors "github.com/davimurta/aurora-pairing-server/internal/errors"
	"github.com/davimurta/aurora-pairing-server/internal/model"
	"github.com/davimurta/aurora-pairing-server/internal/repository"
)

// PatientSummary is the patient-facing view of one active connection.
type PatientSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ConnectedAt  time.Time `json:"connectedAt"`
	ConnectionID string    `json:"connectionId"`
}

// PsychologistSummary is the view a patient gets of their connected psychologist.
type PsychologistSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// PairingService enforces the generate/activate state machine: code
// uniqueness over the full record history, the 24h activation window, and
// the single pending->active transition.
type PairingService struct {
	repo    repository.ConnectionRepository
	codes   *CodeGenerator
	codeTTL time.Duration
	now     func() time.Time
}

func NewPairingService(repo repository.ConnectionRepository, codes *CodeGenerator, codeTTL time.Duration) *PairingService {
	return &PairingService{
		repo:    repo,
		codes:   codes,
		codeTTL: codeTTL,
		now:     time.Now,
	}
}

// GenerateConnectionCode creates a pending connection with a code no other
// record has ever carried. Collisions are resolved by redrawing; the attempt
// cap only guards against a broken random source, not a realistic collision
// rate at 36^6 combinations.
func (s *PairingService) GenerateConnectionCode(ctx context.Context, psychologistID, psychologistName string) (*model.Connection, error) {
	if psychologistID == "" {
		return nil, apperrors.MissingRequired("psychologistId")
	}
	if psychologistName == "" {
		return nil, apperrors.MissingRequired("psychologistName")
	}

	var code string
	for attempts := 0; ; attempts++ {
		if attempts >= config.MaxCodeDrawAttempts {
			return nil, apperrors.Internal("could not allocate a unique connection code")
		}

		drawn, err := s.codes.Generate()
		if err != nil {
			return nil, apperrors.Internal("could not generate connection code").WithCause(err)
		}

		existing, err := s.repo.FindByCode(ctx, drawn)
		if err != nil {
			return nil, apperrors.Database(fmt.Errorf("error generating code: %w", err))
		}
		if existing == nil {
			code = drawn
			break
		}

		log.Debug().Str("code", drawn).Msg("connection code collision, redrawing")
	}

	now := s.now()
	conn := model.Connection{
		Code:             code,
		PsychologistID:   psychologistID,
		PsychologistName: psychologistName,
		Status:           model.StatusPending,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.codeTTL),
	}
	if ok, errs := conn.Validate(); !ok {
		return nil, apperrors.ValidationError(strings.Join(errs, "; ")).WithDetails(errs)
	}

	created, err := s.repo.Create(ctx, model.CreateConnectionParams{
		Code:             conn.Code,
		PsychologistID:   conn.PsychologistID,
		PsychologistName: conn.PsychologistName,
		ExpiresAt:        conn.ExpiresAt,
	})
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("error generating code: %w", err))
	}

	log.Info().
		Str("code", created.Code).
		Str("psychologistId", created.PsychologistID).
		Time("expiresAt", created.ExpiresAt).
		Msg("connection code created")

	return created, nil
}

// ActivateConnection consumes a code on behalf of a patient. The repository
// update is guarded on status = pending, so of two concurrent attempts only
// one can set the patient fields; the loser is re-read and rejected.
func (s *PairingService) ActivateConnection(ctx context.Context, code, patientID, patientName, patientEmail string) (*model.Connection, error) {
	switch {
	case strings.TrimSpace(code) == "":
		return nil, apperrors.MissingRequired("code")
	case patientID == "":
		return nil, apperrors.MissingRequired("patientId")
	case patientName == "":
		return nil, apperrors.MissingRequired("patientName")
	case patientEmail == "":
		return nil, apperrors.MissingRequired("patientEmail")
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))

	conn, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("error activating connection: %w", err))
	}
	if conn == nil {
		log.Warn().Str("code", normalized).Msg("unknown connection code")
		return nil, apperrors.ConnectionCodeNotFound()
	}

	now := s.now()
	if conn.IsExpired(now) {
		log.Warn().Str("code", normalized).Time("expiresAt", conn.ExpiresAt).Msg("expired connection code")
		return nil, apperrors.ConnectionExpired()
	}
	if conn.Status == model.StatusActive {
		log.Warn().Str("code", normalized).Msg("connection code already used")
		return nil, apperrors.ConnectionAlreadyUsed()
	}

	updated, err := s.repo.Activate(ctx, conn.ID, model.ActivateConnectionParams{
		PatientID:    patientID,
		PatientName:  patientName,
		PatientEmail: patientEmail,
		ConnectedAt:  now,
	})
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("error activating connection: %w", err))
	}
	if updated == nil {
		// Guarded update matched no pending row: a concurrent caller won the
		// race between our read and write.
		return nil, s.classifyLostRace(ctx, normalized)
	}

	log.Info().
		Str("code", normalized).
		Str("psychologistId", updated.PsychologistID).
		Str("patientId", patientID).
		Msg("connection activated")

	return updated, nil
}

func (s *PairingService) classifyLostRace(ctx context.Context, code string) error {
	conn, err := s.repo.FindByCode(ctx, code)
	if err != nil || conn == nil {
		return apperrors.Internal("connection could not be activated")
	}
	switch conn.EffectiveStatus(s.now()) {
	case model.StatusActive:
		return apperrors.ConnectionAlreadyUsed()
	case model.StatusExpired:
		return apperrors.ConnectionExpired()
	default:
		return apperrors.Internal("connection could not be activated")
	}
}

// ListPatients returns the active connections of a psychologist as patient
// summaries, newest connection first. The store already orders by
// connected_at; the in-memory sort keeps the guarantee for stores without a
// composite index.
func (s *PairingService) ListPatients(ctx context.Context, psychologistID string) ([]PatientSummary, error) {
	if psychologistID == "" {
		return nil, apperrors.MissingRequired("psychologistId")
	}

	conns, err := s.repo.FindActiveByPsychologist(ctx, psychologistID)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("error listing patients: %w", err))
	}

	patients := make([]PatientSummary, 0, len(conns))
	for _, conn := range conns {
		if conn.PatientID == nil || conn.ConnectedAt == nil {
			continue
		}
		summary := PatientSummary{
			ID:           *conn.PatientID,
			ConnectedAt:  *conn.ConnectedAt,
			ConnectionID: conn.ID,
		}
		if conn.PatientName != nil {
			summary.Name = *conn.PatientName
		}
		if conn.PatientEmail != nil {
			summary.Email = *conn.PatientEmail
		}
		patients = append(patients, summary)
	}

	sort.SliceStable(patients, func(i, j int) bool {
		return patients[i].ConnectedAt.After(patients[j].ConnectedAt)
	})

	return patients, nil
}

// GetPsychologist returns the psychologist a patient is actively connected
// to, or NotFound when no active connection exists.
func (s *PairingService) GetPsychologist(ctx context.Context, patientID string) (*PsychologistSummary, error) {
	if patientID == "" {
		return nil, apperrors.MissingRequired("patientId")
	}

	conn, err := s.repo.FindActiveByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("error finding psychologist: %w", err))
	}
	if conn == nil {
		return nil, apperrors.NotFound("Psychologist")
	}

	summary := &PsychologistSummary{
		ID:   conn.PsychologistID,
		Name: conn.PsychologistName,
	}
	if conn.ConnectedAt != nil {
		summary.ConnectedAt = *conn.ConnectedAt
	}
	return summary, nil
}
