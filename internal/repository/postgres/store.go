// Package postgres is a read-only data source over the scheduling tables.
package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/frontdesk-scheduler/internal/repository"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/logger"
)

type Store struct {
	db     *sqlx.DB
	logger *logger.Logger
}

func NewStore(db *sqlx.DB, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{db: db, logger: log}
}

func (s *Store) Appointments() repository.AppointmentRepository {
	return &appointmentRepository{db: s.db, logger: s.logger}
}

func (s *Store) Doctors() repository.DoctorRepository {
	return &doctorRepository{db: s.db}
}

func (s *Store) Patients() repository.PatientRepository {
	return &patientRepository{db: s.db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection, for readiness probes
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
