package encounter

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/careloop/emr-gateway/internal/model"
	alertService "github.com/careloop/emr-gateway/internal/service/alert"
	encounterService "github.com/careloop/emr-gateway/internal/service/encounter"
	patientService "github.com/careloop/emr-gateway/internal/service/patient"
	apperrors "github.com/careloop/emr-gateway/pkg/errors"
	"github.com/careloop/emr-gateway/pkg/httputil"
)

type Handler struct {
	service  encounterService.Service
	patients patientService.Service
	alerts   *alertService.Service
	logger   zerolog.Logger
}

func NewHandler(
	service encounterService.Service,
	patients patientService.Service,
	alerts *alertService.Service,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		service:  service,
		patients: patients,
		alerts:   alerts,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/encounters", h.CreateEncounter)
}

func (h *Handler) CreateEncounter(c *gin.Context) {
	var req model.CreateEncounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("prompt and patient_id are required", err))
		return
	}
	ctx := c.Request.Context()

	encounter, err := h.service.CreateEncounter(ctx, req.PatientID, req.Prompt)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	// New prescriptions may have introduced conflicts; re-run the rules and
	// push anything High severity at the notifier.
	var alerts []model.Alert
	if patient, err := h.patients.GetPatient(ctx, req.PatientID); err == nil {
		alerts, _ = h.alerts.EvaluateAndNotify(ctx, patient)
	} else {
		h.logger.Warn().Err(err).Int64("patient_id", req.PatientID).
			Msg("skipping alert evaluation, patient lookup failed")
	}

	httputil.RespondWithCreated(c, gin.H{
		"encounter": encounter,
		"alerts":    alerts,
	})
}
