package report

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ops-api/internal/handler"
	"github.com/jwalitptl/clinic-ops-api/internal/model"
	"github.com/jwalitptl/clinic-ops-api/internal/service/report"
	apperrors "github.com/jwalitptl/clinic-ops-api/pkg/errors"
)

type Handler struct {
	service *report.Service
}

func NewHandler(service *report.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports/checkins")
	{
		reports.GET("/daily", h.DailyStats)
		reports.GET("/weekly", h.WeeklyStats)
		reports.GET("/monthly", h.MonthlyStats)
		reports.GET("/no-shows", h.NoShowStats)
	}
}

func (h *Handler) DailyStats(c *gin.Context) {
	start, end, ok := h.parseRange(c)
	if !ok {
		return
	}
	resp, err := h.service.DailyStats(c.Request.Context(), start, end)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) WeeklyStats(c *gin.Context) {
	start, end, ok := h.parseRange(c)
	if !ok {
		return
	}
	resp, err := h.service.WeeklyStats(c.Request.Context(), start, end)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) MonthlyStats(c *gin.Context) {
	start, end, ok := h.parseRange(c)
	if !ok {
		return
	}
	resp, err := h.service.MonthlyStats(c.Request.Context(), start, end)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) NoShowStats(c *gin.Context) {
	start, end, ok := h.parseRange(c)
	if !ok {
		return
	}
	period := model.Granularity(c.DefaultQuery("period", string(model.GranularityDaily)))
	resp, err := h.service.NoShowStats(c.Request.Context(), period, start, end)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

// parseRange reads optional start_date/end_date query params in
// YYYY-MM-DD form. It writes the error response itself so the endpoint
// handlers stay flat; range ordering and span limits are checked by the
// service, only the format is checked here.
func (h *Handler) parseRange(c *gin.Context) (start, end *time.Time, ok bool) {
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"start_date", &start},
		{"end_date", &end},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation(model.DateKeyFormat, raw, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(apperrors.CodeInvalidDateFormat,
				p.name+" must be in YYYY-MM-DD format"))
			return nil, nil, false
		}
		*p.dst = &t
	}
	return start, end, true
}
