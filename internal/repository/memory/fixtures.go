package memory

import (
	"fmt"
	"time"

	"github.com/jwalitptl/frontdesk-scheduler/internal/calendar"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
)

var weekdays9to5 = model.WeeklySchedule{
	model.Monday:    {Start: "09:00", End: "17:00"},
	model.Tuesday:   {Start: "09:00", End: "17:00"},
	model.Wednesday: {Start: "09:00", End: "17:00"},
	model.Thursday:  {Start: "09:00", End: "17:00"},
	model.Friday:    {Start: "09:00", End: "17:00"},
}

var fixtureDoctors = []model.Doctor{
	{ID: "doc-1", Name: "Sarah Chen", Specialty: model.SpecialtyCardiology, Email: "sarah.chen@hospital.com", Phone: "(555) 123-4567", WorkingHours: weekdays9to5},
	{ID: "doc-2", Name: "Michael Rodriguez", Specialty: model.SpecialtyPediatrics, Email: "michael.rodriguez@hospital.com", Phone: "(555) 234-5678", WorkingHours: model.WeeklySchedule{
		model.Monday:    {Start: "08:00", End: "16:00"},
		model.Tuesday:   {Start: "08:00", End: "16:00"},
		model.Wednesday: {Start: "08:00", End: "16:00"},
		model.Thursday:  {Start: "08:00", End: "16:00"},
		model.Friday:    {Start: "08:00", End: "16:00"},
	}},
	{ID: "doc-3", Name: "Emily Johnson", Specialty: model.SpecialtyGeneralPractice, Email: "emily.johnson@hospital.com", Phone: "(555) 345-6789", WorkingHours: model.WeeklySchedule{
		model.Monday:    {Start: "08:00", End: "18:00"},
		model.Wednesday: {Start: "08:00", End: "18:00"},
		model.Friday:    {Start: "08:00", End: "18:00"},
		model.Saturday:  {Start: "09:00", End: "13:00"},
	}},
	{ID: "doc-4", Name: "David Kim", Specialty: model.SpecialtyOrthopedics, Email: "david.kim@hospital.com", Phone: "(555) 456-7890", WorkingHours: model.WeeklySchedule{
		model.Tuesday:   {Start: "10:00", End: "18:00"},
		model.Wednesday: {Start: "10:00", End: "18:00"},
		model.Thursday:  {Start: "10:00", End: "18:00"},
	}},
	{ID: "doc-5", Name: "Lisa Patel", Specialty: model.SpecialtyDermatology, Email: "lisa.patel@hospital.com", Phone: "(555) 567-8901", WorkingHours: model.WeeklySchedule{
		model.Monday:    {Start: "09:00", End: "17:00"},
		model.Tuesday:   {Start: "09:00", End: "17:00"},
		model.Wednesday: {Start: "09:00", End: "17:00"},
		model.Thursday:  {Start: "09:00", End: "17:00"},
	}},
}

var fixturePatients = []model.Patient{
	{ID: "pat-1", Name: "John Smith", Email: "john.smith@email.com", Phone: "(555) 111-2222", DateOfBirth: dob(1985, 3, 15)},
	{ID: "pat-2", Name: "Maria Garcia", Email: "maria.garcia@email.com", Phone: "(555) 222-3333", DateOfBirth: dob(1992, 7, 22)},
	{ID: "pat-3", Name: "James Wilson", Email: "james.wilson@email.com", Phone: "(555) 333-4444", DateOfBirth: dob(1978, 11, 8)},
	{ID: "pat-4", Name: "Emma Brown", Email: "emma.brown@email.com", Phone: "(555) 444-5555", DateOfBirth: dob(2015, 5, 30)},
	{ID: "pat-5", Name: "Robert Taylor", Email: "robert.taylor@email.com", Phone: "(555) 555-6666", DateOfBirth: dob(1965, 1, 12)},
	{ID: "pat-6", Name: "Olivia Martinez", Email: "olivia.martinez@email.com", Phone: "(555) 666-7777", DateOfBirth: dob(1998, 9, 3)},
	{ID: "pat-7", Name: "William Anderson", Email: "william.anderson@email.com", Phone: "(555) 777-8888", DateOfBirth: dob(1955, 12, 25)},
	{ID: "pat-8", Name: "Sophia Thomas", Email: "sophia.thomas@email.com", Phone: "(555) 888-9999", DateOfBirth: dob(2010, 4, 18)},
	{ID: "pat-9", Name: "Benjamin Lee", Email: "benjamin.lee@email.com", Phone: "(555) 999-0000", DateOfBirth: dob(1988, 6, 7)},
	{ID: "pat-10", Name: "Ava White", Email: "ava.white@email.com", Phone: "(555) 000-1111", DateOfBirth: dob(2001, 2, 28)},
}

func dob(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type visit struct {
	at      string
	minutes int
	kind    model.AppointmentType
}

var dayPlans = [][]visit{
	{
		{"09:00", 30, model.AppointmentTypeCheckup},
		{"09:30", 60, model.AppointmentTypeConsultation},
		{"11:00", 30, model.AppointmentTypeFollowUp},
		{"13:00", 90, model.AppointmentTypeProcedure},
		{"15:00", 30, model.AppointmentTypeCheckup},
	},
	{
		{"08:30", 30, model.AppointmentTypeFollowUp},
		{"10:00", 60, model.AppointmentTypeConsultation},
		{"11:30", 30, model.AppointmentTypeCheckup},
		{"14:00", 30, model.AppointmentTypeFollowUp},
		{"14:30", 60, model.AppointmentTypeConsultation},
	},
	{
		{"09:00", 90, model.AppointmentTypeProcedure},
		{"11:00", 30, model.AppointmentTypeCheckup},
		{"13:30", 30, model.AppointmentTypeFollowUp},
		{"16:00", 30, model.AppointmentTypeCheckup},
	},
}

// Fixtures builds the demo dataset around the week containing ref: the
// previous, current and next week for every doctor on their working days.
// Visits before ref's day are completed (some no-shows), the rest scheduled
// with the odd cancellation. One double booking exists for doc-1 on the
// Wednesday of the current week.
func Fixtures(ref time.Time) Dataset {
	weekStart := calendar.WeekStart(ref)
	today := dayStart(ref)

	var apts []model.Appointment
	n := 0
	for di, doc := range fixtureDoctors {
		for w := -1; w <= 1; w++ {
			for day := 0; day < 7; day++ {
				date := weekStart.AddDate(0, 0, w*7+day)
				if _, works := doc.HoursOn(date); !works {
					continue
				}
				plan := dayPlans[(di+day+w+3)%len(dayPlans)]
				for _, v := range plan {
					n++
					start := at(date, v.at)
					apts = append(apts, model.Appointment{
						ID:        fmt.Sprintf("apt-%03d", n),
						PatientID: fixturePatients[(n*7+di)%len(fixturePatients)].ID,
						DoctorID:  doc.ID,
						Type:      v.kind,
						StartTime: start,
						EndTime:   start.Add(time.Duration(v.minutes) * time.Minute),
						Status:    fixtureStatus(n, date.Before(today)),
					})
				}
			}
		}
	}

	wednesday := weekStart.AddDate(0, 0, 2)
	overlap := at(wednesday, "10:00")
	apts = append(apts, model.Appointment{
		ID:        fmt.Sprintf("apt-%03d", n+1),
		PatientID: "pat-3",
		DoctorID:  "doc-1",
		Type:      model.AppointmentTypeConsultation,
		StartTime: overlap,
		EndTime:   overlap.Add(45 * time.Minute),
		Status:    fixtureStatus(n+1, wednesday.Before(today)),
		Notes:     "Double-booked: confirm with patient",
	})

	doctors := make([]model.Doctor, len(fixtureDoctors))
	copy(doctors, fixtureDoctors)
	patients := make([]model.Patient, len(fixturePatients))
	copy(patients, fixturePatients)

	return Dataset{Doctors: doctors, Patients: patients, Appointments: apts}
}

// NewWithFixtures builds a store over Fixtures(ref)
func NewWithFixtures(ref time.Time, opts Options) (*Store, error) {
	return New(Fixtures(ref), opts)
}

func fixtureStatus(n int, past bool) model.AppointmentStatus {
	switch {
	case past && n%7 == 0:
		return model.AppointmentStatusNoShow
	case past:
		return model.AppointmentStatusCompleted
	case n%11 == 0:
		return model.AppointmentStatusCancelled
	default:
		return model.AppointmentStatusScheduled
	}
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func at(date time.Time, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(fmt.Sprintf("bad fixture time %q", hhmm))
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location())
}
