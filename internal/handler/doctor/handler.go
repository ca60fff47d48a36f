package doctor

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/frontdesk-scheduler/internal/handler"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/appointment"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
	}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.AllDoctors(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithList(c, doctors, len(doctors))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	doctor, err := h.service.DoctorByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}
