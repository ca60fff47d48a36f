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

type doctorRepository struct {
	db *sqlx.DB
}

type workingHoursRow struct {
	DoctorID  string `db:"doctor_id"`
	DayOfWeek string `db:"day_of_week"`
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
}

func (r *doctorRepository) List(ctx context.Context) ([]model.Doctor, error) {
	query := `
		SELECT id, name, specialty, COALESCE(email, '') AS email, COALESCE(phone, '') AS phone
		FROM doctors
		ORDER BY id`
	var doctors []model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	hours, err := r.workingHours(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range doctors {
		doctors[i].WorkingHours = hours[doctors[i].ID]
	}
	return doctors, nil
}

func (r *doctorRepository) Get(ctx context.Context, id string) (*model.Doctor, error) {
	query := `
		SELECT id, name, specialty, COALESCE(email, '') AS email, COALESCE(phone, '') AS phone
		FROM doctors
		WHERE id = $1`
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	hours, err := r.workingHours(ctx, id)
	if err != nil {
		return nil, err
	}
	doctor.WorkingHours = hours[id]
	return &doctor, nil
}

// workingHours loads the weekly schedule of one doctor, or of all doctors
// when doctorID is empty
func (r *doctorRepository) workingHours(ctx context.Context, doctorID string) (map[string]model.WeeklySchedule, error) {
	query := `
		SELECT doctor_id, day_of_week, start_time, end_time
		FROM doctor_working_hours`
	args := []interface{}{}
	if doctorID != "" {
		query += ` WHERE doctor_id = $1`
		args = append(args, doctorID)
	}

	var rows []workingHoursRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load working hours: %w", err)
	}

	out := make(map[string]model.WeeklySchedule)
	for _, row := range rows {
		if out[row.DoctorID] == nil {
			out[row.DoctorID] = make(model.WeeklySchedule)
		}
		out[row.DoctorID][model.DayOfWeek(row.DayOfWeek)] = model.WorkingHours{
			Start: row.StartTime,
			End:   row.EndTime,
		}
	}
	return out, nil
}
