package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/frontdesk-scheduler/internal/handler"
	"github.com/jwalitptl/frontdesk-scheduler/internal/middleware"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/repository"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/appointment"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/httputil"
)

// listQuery is the query string of the appointment listing. start_date and
// end_date go together and win over date.
type listQuery struct {
	DoctorID  string `form:"doctor_id" binding:"required"`
	Date      string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Type      string `form:"type" binding:"omitempty,oneof=checkup consultation follow-up procedure"`
	Status    string `form:"status" binding:"omitempty,oneof=scheduled completed cancelled no-show"`
	Populate  bool   `form:"populate"`
}

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/conflicts", h.ListConflicts)
		appointments.GET("/:id", h.GetAppointment)
	}
	r.GET("/appointment-types", middleware.Cache(middleware.DefaultCacheConfig()), h.ListAppointmentTypes)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var q listQuery
	if !handler.BindQuery(c, &q) {
		return
	}
	filters, err := h.filters(q)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	apts, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	if q.Populate {
		populated := h.service.PopulateAll(c.Request.Context(), apts)
		httputil.RespondWithList(c, populated, len(populated))
		return
	}
	httputil.RespondWithList(c, apts, len(apts))
}

func (h *Handler) ListConflicts(c *gin.Context) {
	var q listQuery
	if !handler.BindQuery(c, &q) {
		return
	}
	filters, err := h.filters(q)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	apts, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	conflicts := h.service.Conflicts(apts)
	httputil.RespondWithList(c, conflicts, len(conflicts))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	apt, err := h.service.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}

	if c.Query("populate") == "true" {
		httputil.RespondWithSuccess(c, h.service.Populate(c.Request.Context(), *apt))
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ListAppointmentTypes(c *gin.Context) {
	types := make([]model.AppointmentTypeInfo, 0, len(model.AppointmentTypes))
	for _, t := range model.AppointmentTypes {
		types = append(types, model.TypeInfo(t))
	}
	httputil.RespondWithList(c, types, len(types))
}

func (h *Handler) filters(q listQuery) (model.AppointmentFilters, error) {
	if (q.StartDate == "") != (q.EndDate == "") {
		return model.AppointmentFilters{}, apperrors.BadRequest("start_date and end_date must be given together", nil)
	}

	loc := h.service.Location()
	filters := model.AppointmentFilters{
		DoctorID: q.DoctorID,
		Type:     model.AppointmentType(q.Type),
		Status:   model.AppointmentStatus(q.Status),
	}

	var err error
	if filters.Date, err = handler.ParseDate(q.Date, loc); err != nil {
		return filters, err
	}
	if filters.StartDate, err = handler.ParseDate(q.StartDate, loc); err != nil {
		return filters, err
	}
	end, err := handler.ParseDate(q.EndDate, loc)
	if err != nil {
		return filters, err
	}
	if !end.IsZero() {
		_, filters.EndDate = repository.DayBounds(end)
	}
	return filters, nil
}
