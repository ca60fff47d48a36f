package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/logger"
)

const appointmentColumns = `
		SELECT id, patient_id, doctor_id, type,
			   start_time, end_time, status, COALESCE(notes, '') AS notes
		FROM appointments`

type appointmentRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]model.Appointment, error) {
	query := appointmentColumns + `
		WHERE doctor_id = $1
		ORDER BY start_time`
	return r.list(ctx, query, doctorID)
}

func (r *appointmentRepository) ListByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]model.Appointment, error) {
	start, end := repository.DayBounds(date)
	return r.ListByDoctorAndDateRange(ctx, doctorID, start, end)
}

func (r *appointmentRepository) ListByDoctorAndDateRange(ctx context.Context, doctorID string, start, end time.Time) ([]model.Appointment, error) {
	query := appointmentColumns + `
		WHERE doctor_id = $1 AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time`
	return r.list(ctx, query, doctorID, start, end)
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	query := appointmentColumns + `
		WHERE id = $1`
	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

// list drops rows that break the appointment invariants
func (r *appointmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Appointment, error) {
	var rows []model.Appointment
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	apts := make([]model.Appointment, 0, len(rows))
	for _, apt := range rows {
		if err := apt.Validate(); err != nil {
			r.logger.Warn("Skipping invalid appointment row", "appointment_id", apt.ID, "error", err.Error())
			continue
		}
		apts = append(apts, apt)
	}
	return apts, nil
}
