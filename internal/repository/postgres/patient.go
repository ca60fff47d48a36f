package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
)

type patientRepository struct {
	db *sqlx.DB
}

func (r *patientRepository) Get(ctx context.Context, id string) (*model.Patient, error) {
	query := `
		SELECT id, name, COALESCE(email, '') AS email, COALESCE(phone, '') AS phone, date_of_birth
		FROM patients
		WHERE id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}
