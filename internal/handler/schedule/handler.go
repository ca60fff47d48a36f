package schedule

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/frontdesk-scheduler/internal/handler"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/render"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/appointment"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/schedule"
	"github.com/jwalitptl/frontdesk-scheduler/internal/session"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/httputil"
)

type pageQuery struct {
	Date string `form:"date"`
	View string `form:"view"`
}

type Handler struct {
	schedules    *schedule.Service
	appointments *appointment.Service
	now          func() time.Time
}

func NewHandler(schedules *schedule.Service, appointments *appointment.Service) *Handler {
	return &Handler{
		schedules:    schedules,
		appointments: appointments,
		now:          time.Now,
	}
}

// RegisterRoutes adds the JSON view model under the API group
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/schedule", h.GetSchedule)
}

// RegisterPages adds the HTML schedule page
func (h *Handler) RegisterPages(r gin.IRoutes) {
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/schedule")
	})
	r.GET("/schedule", h.SchedulePage)
}

func (h *Handler) GetSchedule(c *gin.Context) {
	q, err := h.query(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	sched, err := h.schedules.Build(c.Request.Context(), q)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, sched)
}

// SchedulePage renders the front-desk page. Failures are shown in the
// page's error block rather than as a bare error response.
func (h *Handler) SchedulePage(c *gin.Context) {
	ctx := c.Request.Context()
	today := handler.Today(h.now(), h.schedules.Location())

	doctors, err := h.appointments.AllDoctors(ctx)
	if err != nil {
		h.renderPage(c, schedule.Query{DoctorID: session.DefaultDoctorID, Date: today, View: model.CalendarViewDay}, doctors, nil, err, today)
		return
	}

	q, err := h.query(c)
	if err != nil {
		fallback := schedule.Query{DoctorID: q.DoctorID, Date: today, View: model.CalendarViewDay}
		h.renderPage(c, fallback, doctors, nil, err, today)
		return
	}

	sched, err := h.schedules.Build(ctx, q)
	h.renderPage(c, q, doctors, sched, err, today)
}

func (h *Handler) renderPage(c *gin.Context, q schedule.Query, doctors []model.Doctor, sched *schedule.Schedule, err error, today time.Time) {
	status := http.StatusOK
	if err != nil {
		_ = c.Error(err)
		status, _ = httputil.ErrorStatus(err)
	}
	c.HTML(status, render.PageTemplate, render.NewPage(q, doctors, sched, err, today))
}

// query reads the selection from the query string. A missing doctor_id
// selects the default doctor; an empty one selects nobody.
func (h *Handler) query(c *gin.Context) (schedule.Query, error) {
	loc := h.schedules.Location()
	q := schedule.Query{
		DoctorID: session.DefaultDoctorID,
		Date:     handler.Today(h.now(), loc),
		View:     model.CalendarViewDay,
	}
	if id, ok := c.GetQuery("doctor_id"); ok {
		q.DoctorID = id
	}

	var pq pageQuery
	if err := c.ShouldBindQuery(&pq); err != nil {
		return q, apperrors.BadRequest("invalid query parameters", err)
	}

	if pq.View != "" {
		view := model.CalendarView(pq.View)
		if !view.Valid() {
			return q, apperrors.BadRequest("view must be day or week", nil)
		}
		q.View = view
	}

	date, err := handler.ParseDate(pq.Date, loc)
	if err != nil {
		return q, err
	}
	if !date.IsZero() {
		q.Date = date
	}
	return q, nil
}
