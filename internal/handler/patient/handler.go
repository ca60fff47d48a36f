package patient

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
	patients := r.Group("/patients")
	{
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) GetPatient(c *gin.Context) {
	patient, err := h.service.PatientByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patient)
}
