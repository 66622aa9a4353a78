package repository

import (
	"context"

	"github.com/davimurta/aurora-pairing-server/internal/database"
	"github.com/davimurta/aurora-pairing-server/internal/model"
)

type ConnectionRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Connection, error)
	Create(ctx context.Context, params model.CreateConnectionParams) (*model.Connection, error)
	Activate(ctx context.Context, id string, params model.ActivateConnectionParams) (*model.Connection, error)
	FindActiveByPsychologist(ctx context.Context, psychologistID string) ([]model.Connection, error)
	FindActiveByPatient(ctx context.Context, patientID string) (*model.Connection, error)
	CountExpiredPending(ctx context.Context) (int64, error)
}

// connectionRepo works against either a live connection or a transaction.
type connectionRepo struct {
	db database.DBTX
}

func NewConnectionRepository(db database.DBTX) ConnectionRepository {
	return &connectionRepo{db: db}
}

// FindByCode matches codes in any status: codes are never recycled, so
// uniqueness checks at generation time must see used and expired rows too.
func (r *connectionRepo) FindByCode(ctx context.Context, code string) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.GetContext(ctx, &conn, `
		SELECT * FROM connections
		WHERE code = $1
	`, code)
	return HandleNotFound(&conn, err)
}

func (r *connectionRepo) Create(ctx context.Context, params model.CreateConnectionParams) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.GetContext(ctx, &conn, `
		INSERT INTO connections (code, psychologist_id, psychologist_name, status, expires_at)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING *
	`, params.Code, params.PsychologistID, params.PsychologistName, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// Activate sets the patient fields through a status-guarded update, so the
// loser of a concurrent activation race gets no row back instead of silently
// overwriting the winner's patient data.
func (r *connectionRepo) Activate(ctx context.Context, id string, params model.ActivateConnectionParams) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.GetContext(ctx, &conn, `
		UPDATE connections SET
			patient_id = $2,
			patient_name = $3,
			patient_email = $4,
			connected_at = $5,
			status = 'active'
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, id, params.PatientID, params.PatientName, params.PatientEmail, params.ConnectedAt)
	return HandleNotFound(&conn, err)
}

func (r *connectionRepo) FindActiveByPsychologist(ctx context.Context, psychologistID string) ([]model.Connection, error) {
	var conns []model.Connection
	err := r.db.SelectContext(ctx, &conns, `
		SELECT * FROM connections
		WHERE psychologist_id = $1 AND status = 'active'
		ORDER BY connected_at DESC
	`, psychologistID)
	return conns, err
}

func (r *connectionRepo) FindActiveByPatient(ctx context.Context, patientID string) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.GetContext(ctx, &conn, `
		SELECT * FROM connections
		WHERE patient_id = $1 AND status = 'active'
		ORDER BY connected_at DESC
		LIMIT 1
	`, patientID)
	return HandleNotFound(&conn, err)
}

// CountExpiredPending feeds the expiry sweep report. Records are never
// deleted here: codes stay reserved forever so they cannot be reissued.
func (r *connectionRepo) CountExpiredPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM connections
		WHERE status = 'pending' AND expires_at < NOW()
	`)
	return count, err
}
