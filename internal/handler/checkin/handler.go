package checkin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-ops-api/internal/handler"
	"github.com/jwalitptl/clinic-ops-api/internal/model"
	"github.com/jwalitptl/clinic-ops-api/internal/service/checkin"
	apperrors "github.com/jwalitptl/clinic-ops-api/pkg/errors"
)

type Handler struct {
	service *checkin.Service
}

func NewHandler(service *checkin.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	checkins := r.Group("/checkins")
	{
		checkins.POST("", h.CreateCheckin)
		checkins.PUT("/:id/attend", h.AttendCheckin)
		checkins.GET("/queue", h.ListQueue)
	}
}

func (h *Handler) CreateCheckin(c *gin.Context) {
	var req model.CreateCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := bindingError(err)
		c.JSON(appErr.StatusCode(), handler.NewErrorResponse(appErr.Code, appErr.Message))
		return
	}

	detail, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(detail))
}

func (h *Handler) AttendCheckin(c *gin.Context) {
	raw := c.Param("id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(apperrors.CodeMissingCheckinID, "checkin id is required"))
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(apperrors.CodeInvalidCheckinID, "checkin id must be a valid id"))
		return
	}

	var req model.AttendCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		appErr := bindingError(err)
		c.JSON(appErr.StatusCode(), handler.NewErrorResponse(appErr.Code, appErr.Message))
		return
	}

	detail, err := h.service.Attend(c.Request.Context(), id, req.Notes)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail))
}

func (h *Handler) ListQueue(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(apperrors.CodeInvalidLimit, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.service.Queue(c.Request.Context(), limit)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"queue": entries,
		"count": len(entries),
	}))
}

// bindingError translates gin binding failures onto the stable code
// space, so a missing payment_method reads the same whether it is caught
// at the binding layer or inside the service.
func bindingError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Field() {
		case "patient_id":
			if fe.Tag() == "required" {
				return apperrors.New(apperrors.CodeMissingPatientID, "patient_id is required")
			}
			return apperrors.New(apperrors.CodeInvalidPatientID, "patient_id must be a valid id")
		case "payment_method":
			if fe.Tag() == "required" {
				return apperrors.New(apperrors.CodeMissingPaymentMethod, "payment_method is required")
			}
			return apperrors.New(apperrors.CodeInvalidPaymentMethod, "payment_method must be one of medical_aid, cash, both")
		case "amount":
			return apperrors.New(apperrors.CodeInvalidAmount, "amount must be a non-negative number")
		}
		return apperrors.New(apperrors.CodeInvalidPayload, fe.Error())
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch typeErr.Field {
		case "patient_id":
			return apperrors.New(apperrors.CodeInvalidPatientID, "patient_id must be a valid id")
		case "payment_method":
			return apperrors.New(apperrors.CodeInvalidPaymentMethod, "payment_method must be one of medical_aid, cash, both")
		case "amount":
			return apperrors.New(apperrors.CodeInvalidAmount, "amount must be a non-negative number")
		}
	}
	return apperrors.New(apperrors.CodeInvalidPayload, "request body is not valid JSON")
}
