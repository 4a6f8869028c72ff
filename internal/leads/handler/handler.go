package handler

import (
	"fmt"
	"net/http"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/service"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/transport"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/apperr"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/httpkit"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	playground "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgFranchiseMissing = "franchiseId is required"
	orderAsc            = "asc"
	orderDesc           = "desc"
)

// New builds the handler and registers the leadstatus validation tag on val.
func New(svc *service.Service, val *validator.Validator) (*Handler, error) {
	err := val.RegisterValidation("leadstatus", func(fl playground.FieldLevel) bool {
		_, ok := domain.ParseStatus(fl.Field().String())
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("register leadstatus validation: %w", err)
	}
	return &Handler{svc: svc, val: val}, nil
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Submit)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.ChangeStatus)
	rg.POST("/:id/enrollment", h.RecordEnrollment)
	rg.GET("/:id/history", h.History)
}

func (h *Handler) Submit(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.SubmitLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	franchiseID, ok := id.FranchiseID()
	if req.FranchiseID != nil && (!ok || id.HasRole(httpkit.RoleAdmin)) {
		franchiseID, ok = *req.FranchiseID, true
	}
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, msgFranchiseMissing, nil)
		return
	}

	actor := id.UserID()
	lead, err := h.svc.SubmitLead(c.Request.Context(), service.SubmitInput{
		FranchiseID:      franchiseID,
		StudentName:      req.StudentName,
		StudentPhone:     req.StudentPhone,
		StudentEmail:     req.StudentEmail,
		ParentName:       req.ParentName,
		CourseInterested: req.CourseInterested,
		CurrentClass:     req.CurrentClass,
		City:             req.City,
		Remarks:          req.Remarks,
	}, &actor)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) GetByID(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.svc.GetLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		fields := validator.FieldErrors(err)
		verr := apperr.Validation(msgValidationFailed).WithDetails(fields)
		if _, bad := fields["Status"]; bad {
			verr = verr.WithCode(apperr.CodeInvalidStatus)
		}
		httpkit.HandleError(c, verr)
		return
	}

	actor := id.UserID()
	lead, err := h.svc.ChangeLeadStatus(c.Request.Context(), leadID, req.Status, req.Remarks, &actor)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) RecordEnrollment(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.RecordEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	actor := id.UserID()
	result, err := h.svc.RecordEnrollment(c.Request.Context(), leadID, req.AdmissionAmount, &actor)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) History(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	order := c.DefaultQuery("order", orderDesc)
	if order != orderAsc && order != orderDesc {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, gin.H{"order": "must be asc or desc"})
		return
	}

	entries, err := h.svc.History(c.Request.Context(), leadID, order == orderAsc)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.HistoryResponse{Items: entries, Order: order})
}
