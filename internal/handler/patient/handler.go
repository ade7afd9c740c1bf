package patient

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careloop/emr-gateway/internal/model"
	"github.com/careloop/emr-gateway/internal/repository"
	alertService "github.com/careloop/emr-gateway/internal/service/alert"
	encounterService "github.com/careloop/emr-gateway/internal/service/encounter"
	patientService "github.com/careloop/emr-gateway/internal/service/patient"
	apperrors "github.com/careloop/emr-gateway/pkg/errors"
	"github.com/careloop/emr-gateway/pkg/httputil"
)

type Handler struct {
	service    patientService.Service
	encounters encounterService.Service
	alerts     *alertService.Service
	medRepo    repository.MedicationRepository
}

func NewHandler(
	service patientService.Service,
	encounters encounterService.Service,
	alerts *alertService.Service,
	medRepo repository.MedicationRepository,
) *Handler {
	return &Handler{
		service:    service,
		encounters: encounters,
		alerts:     alerts,
		medRepo:    medRepo,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.POST("", h.CreatePatient)
		patients.GET("/:id", h.GetPatient)
		patients.GET("/:id/alerts", h.GetAlerts)
		patients.GET("/:id/dashboard", h.Dashboard)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListPatients(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}

	patient, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("prompt is required", err))
		return
	}

	patient, err := h.service.CreatePatient(c.Request.Context(), req.Prompt)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, patient)
}

// Dashboard assembles the patient detail view: record, encounters,
// medications and the alerts computed from them.
func (h *Handler) Dashboard(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	patient, err := h.service.GetPatient(ctx, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	encounters, err := h.encounters.ListEncounters(ctx, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	medications, err := h.medRepo.ListForPatient(ctx, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	alerts, err := h.alerts.EvaluateForPatient(ctx, patient)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, model.PatientDashboard{
		Patient:     patient,
		Encounters:  encounters,
		Medications: medications,
		Alerts:      alerts,
	})
}

func (h *Handler) GetAlerts(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	patient, err := h.service.GetPatient(ctx, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	alerts, err := h.alerts.EvaluateForPatient(ctx, patient)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, alerts)
}

func patientID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return 0, false
	}
	return id, true
}
