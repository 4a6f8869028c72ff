package handler

import (
	"net/http"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/service"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/transport"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/apperr"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/httpkit"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const msgInvalidRequest = "invalid request"

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts read routes on protected and settlement on admin.
func (h *Handler) RegisterRoutes(protected, admin *gin.RouterGroup) {
	protected.GET("/commissions/:id", h.GetByID)
	protected.GET("/leads/:id/commission", h.GetByLead)
	admin.PATCH("/commissions/:id/status", h.Advance)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	commission, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, commission)
}

func (h *Handler) GetByLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	commission, err := h.svc.GetByLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, commission)
}

func (h *Handler) Advance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.AdvanceCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("validation failed").
			WithCode(apperr.CodeInvalidStatus).
			WithDetails(validator.FieldErrors(err)))
		return
	}

	commission, err := h.svc.AdvanceCommission(c.Request.Context(), id, req.Status, req.Remarks)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, commission)
}
