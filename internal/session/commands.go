package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
)

// Help lists the commands understood by Execute
const Help = `Commands:
  doctor <id>        select a doctor
  date <YYYY-MM-DD>  jump to a date
  view <day|week>    switch the layout
  next | prev        move one day or week
  today              jump to today
  refresh            reload the current selection
  help               show this text
  quit               leave`

// Sentinels returned by Execute for commands the caller handles
var (
	ErrQuit = errors.New("quit")
	ErrHelp = errors.New("help")
)

// Execute applies one line of front-desk input
func (s *Session) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "doctor", "d":
		if len(args) != 1 {
			return apperrors.BadRequest("usage: doctor <id>", nil)
		}
		s.SetDoctor(args[0])
	case "date":
		if len(args) != 1 {
			return apperrors.BadRequest("usage: date <YYYY-MM-DD>", nil)
		}
		date, err := model.ParseDate(args[0], s.loc)
		if err != nil {
			return apperrors.BadRequest(fmt.Sprintf("invalid date %q", args[0]), err)
		}
		s.SetDate(date)
	case "view", "v":
		if len(args) != 1 {
			return apperrors.BadRequest("usage: view <day|week>", nil)
		}
		return s.SetView(model.CalendarView(strings.ToLower(args[0])))
	case "day", "week":
		return s.SetView(model.CalendarView(cmd))
	case "next", "n":
		s.Next()
	case "prev", "p":
		s.Prev()
	case "today", "t":
		s.Today()
	case "refresh", "r":
		s.Refresh()
	case "help", "h", "?":
		return ErrHelp
	case "quit", "exit", "q":
		return ErrQuit
	default:
		return apperrors.BadRequest(fmt.Sprintf("unknown command %q", cmd), nil)
	}
	return nil
}
