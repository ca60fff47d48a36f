package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/render"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/schedule"
	"github.com/jwalitptl/frontdesk-scheduler/internal/session"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
)

// selectionFlags are the doctor, date and view flags shared by show and watch
type selectionFlags struct {
	doctorID string
	date     string
	view     string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.doctorID, "doctor", "d", session.DefaultDoctorID, "Doctor ID")
	cmd.Flags().StringVar(&f.date, "date", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&f.view, "view", "v", string(model.CalendarViewDay), "Layout: day or week")
}

func (f *selectionFlags) query(loc *time.Location, today time.Time) (schedule.Query, error) {
	q := schedule.Query{DoctorID: f.doctorID, Date: today, View: model.CalendarView(f.view)}
	if !q.View.Valid() {
		return q, apperrors.BadRequest("view must be day or week", nil)
	}
	if f.date != "" {
		date, err := model.ParseDate(f.date, loc)
		if err != nil {
			return q, err
		}
		q.Date = date
	}
	return q, nil
}

func showCmd(configFile *string) *cobra.Command {
	var flags selectionFlags

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a doctor's day or week schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			q, err := flags.query(a.loc, a.today())
			if err != nil {
				return err
			}

			sched, err := a.schedules.Build(cmd.Context(), q)
			if err != nil {
				return err
			}
			return render.Text(cmd.OutOrStdout(), sched)
		},
	}
	flags.register(cmd)
	return cmd
}

func doctorsCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctors",
		Short: "List the doctors and their working hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			doctors, err := a.appointments.AllDoctors(cmd.Context())
			if err != nil {
				return err
			}
			return render.Doctors(cmd.OutOrStdout(), doctors)
		},
	}
}
