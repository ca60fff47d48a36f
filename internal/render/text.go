package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/jwalitptl/frontdesk-scheduler/internal/calendar"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/schedule"
)

// Messages shown by the text renderer around the grid
const (
	LoadingMessage    = "Loading appointments..."
	ErrorHeading      = "Error loading appointments"
	NoDoctorMessage   = "Select a doctor to see the schedule"
	offHoursMarker    = "·"
	conflictMarker    = "!"
	outsideGridHeader = "Outside calendar hours:"
)

// Text writes sched as a plain-text table
func Text(w io.Writer, sched *schedule.Schedule) error {
	switch {
	case sched == nil:
		return nil
	case sched.Error != "":
		_, err := fmt.Fprintf(w, "%s: %s\n", ErrorHeading, sched.Error)
		return err
	case sched.Loading:
		_, err := fmt.Fprintln(w, LoadingMessage)
		return err
	case sched.Day != nil:
		return textDay(w, sched.Day)
	case sched.Week != nil:
		return textWeek(w, sched.Week)
	default:
		_, err := fmt.Fprintln(w, NoDoctorMessage)
		return err
	}
}

func textDay(w io.Writer, v *calendar.DayView) error {
	if err := heading(w, v.Title, v.DoctorLine); err != nil {
		return err
	}

	table := newTable(w)
	table.SetHeader([]string{"Time", "Appointments"})
	for _, row := range v.Rows {
		label := row.Slot.Label
		if !row.WithinHours {
			label += " " + offHoursMarker
		}
		lines := make([]string, 0, len(row.Cards))
		for _, c := range row.Cards {
			lines = append(lines, dayCard(c))
		}
		table.Append([]string{label, strings.Join(lines, "\n")})
	}
	table.Render()

	return footer(w, v.OutsideGrid, v.Empty, v.EmptyMessage, len(v.Conflicts))
}

func textWeek(w io.Writer, v *calendar.WeekView) error {
	if err := heading(w, v.Title, v.DoctorLine); err != nil {
		return err
	}

	table := newTable(w)
	header := []string{"Time"}
	for _, d := range v.Days {
		header = append(header, fmt.Sprintf("%s %s (%d)", d.Name, d.Label, d.Count))
	}
	table.SetHeader(header)

	for _, row := range v.Rows {
		cols := []string{row.Slot.DisplayLabel}
		for _, cell := range row.Cells {
			names := make([]string, 0, len(cell.Cards))
			for _, c := range cell.Cards {
				name := c.PatientName
				if c.Conflict {
					name = conflictMarker + name
				}
				names = append(names, name)
			}
			text := strings.Join(names, "\n")
			if text == "" && !cell.WithinHours {
				text = offHoursMarker
			}
			cols = append(cols, text)
		}
		table.Append(cols)
	}
	table.Render()

	return footer(w, v.OutsideGrid, v.Empty, v.EmptyMessage, len(v.Conflicts))
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetRowLine(true)
	return table
}

func heading(w io.Writer, title, doctorLine string) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if doctorLine != "" {
		if _, err := fmt.Fprintln(w, doctorLine); err != nil {
			return err
		}
	}
	return nil
}

func footer(w io.Writer, outside []calendar.Card, empty bool, emptyMessage string, conflicts int) error {
	if empty {
		if _, err := fmt.Fprintln(w, emptyMessage); err != nil {
			return err
		}
	}
	if len(outside) > 0 {
		if _, err := fmt.Fprintln(w, outsideGridHeader); err != nil {
			return err
		}
		for _, c := range outside {
			if _, err := fmt.Fprintf(w, "  %s\n", dayCard(c)); err != nil {
				return err
			}
		}
	}
	if conflicts > 0 {
		if _, err := fmt.Fprintf(w, "%d overlapping appointment pair(s), marked %s\n", conflicts, conflictMarker); err != nil {
			return err
		}
	}
	return nil
}

func dayCard(c calendar.Card) string {
	marker := ""
	if c.Conflict {
		marker = conflictMarker
	}
	s := fmt.Sprintf("%s%s - %s, %s (%d min)", marker, c.PatientName, c.TypeLabel, c.TimeRange, c.DurationMinutes)
	if c.Status != "" && c.Status != model.AppointmentStatusScheduled {
		s += " [" + string(c.Status) + "]"
	}
	return s
}

// Doctors prints the doctor directory with each doctor's working hours
func Doctors(w io.Writer, doctors []model.Doctor) error {
	table := newTable(w)
	table.SetRowLine(false)
	table.SetHeader([]string{"ID", "Doctor", "Email", "Phone", "Hours"})
	for _, d := range doctors {
		table.Append([]string{d.ID, d.DisplayName(), d.Email, d.Phone, hoursSummary(d.WorkingHours)})
	}
	table.Render()
	return nil
}

func hoursSummary(hours model.WeeklySchedule) string {
	parts := make([]string, 0, len(hours))
	for _, day := range model.DaysOfWeek {
		h, ok := hours[day]
		if !ok {
			continue
		}
		name := string(day)
		parts = append(parts, fmt.Sprintf("%s%s %s-%s", strings.ToUpper(name[:1]), name[1:3], h.Start, h.End))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
