package handler

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
	"github.com/jengzang/bikeshare-insights/internal/models"
	"github.com/jengzang/bikeshare-insights/internal/repository"
	"github.com/jengzang/bikeshare-insights/internal/service"
	"github.com/jengzang/bikeshare-insights/pkg/logger"
	"github.com/jengzang/bikeshare-insights/pkg/response"
)

const moduleName = "handler"

// DashboardHandler handles HTTP requests for the dashboard charts
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetControls handles GET /api/v1/controls
func (h *DashboardHandler) GetControls(c *gin.Context) {
	controls, err := h.dashboardService.Controls(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, controls)
}

// GetUsageHeatmap handles GET /api/v1/charts/usage-heatmap
func (h *DashboardHandler) GetUsageHeatmap(c *gin.Context) {
	sel, _, err := parseChartQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	view, err := h.dashboardService.UsageHeatmap(c.Request.Context(), sel)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// GetTemperatureScatter handles GET /api/v1/charts/temperature-scatter
func (h *DashboardHandler) GetTemperatureScatter(c *gin.Context) {
	sel, temp, err := parseChartQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	view, err := h.dashboardService.TemperatureScatter(c.Request.Context(), sel, temp)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// GetUserTypes handles GET /api/v1/charts/user-types
func (h *DashboardHandler) GetUserTypes(c *gin.Context) {
	view, err := h.dashboardService.UserTypes(c.Request.Context(), queryList(c, "day_type"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// GetCorrelation handles GET /api/v1/charts/correlation
func (h *DashboardHandler) GetCorrelation(c *gin.Context) {
	view, err := h.dashboardService.Correlation(c.Request.Context(), queryList(c, "columns"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// GetSegments handles GET /api/v1/charts/segments
func (h *DashboardHandler) GetSegments(c *gin.Context) {
	view, err := h.dashboardService.Segments(c.Request.Context(), c.Query("segment"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// GetSummary handles GET /api/v1/summary
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	sel, temp, err := parseChartQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	view, err := h.dashboardService.Summary(c.Request.Context(), sel, temp)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	sel, temp, err := parseChartQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	dashboard := h.dashboardService.Dashboard(c.Request.Context(), models.DashboardFilter{
		Selection: sel,
		Temp:      temp,
		DayTypes:  queryList(c, "day_type"),
		Columns:   queryList(c, "columns"),
		Segment:   c.Query("segment"),
	})
	response.Success(c, dashboard)
}

// parseChartQuery binds season, weather and the temperature bounds. An
// inverted range is rejected here; the service itself applies it as given.
func parseChartQuery(c *gin.Context) (models.Selection, models.TempSelection, error) {
	var q models.ChartQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return models.Selection{}, models.TempSelection{}, apperror.Wrap(apperror.ErrInvalidInput, moduleName, err, "invalid query parameters")
	}

	temp := models.TempSelection{Min: q.TempMin, Max: q.TempMax}
	for _, v := range []*float64{temp.Min, temp.Max} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return models.Selection{}, models.TempSelection{}, apperror.New(apperror.ErrInvalidInput, moduleName, "temperature bounds must be finite")
		}
	}
	if temp.Min != nil && temp.Max != nil && *temp.Min > *temp.Max {
		return models.Selection{}, models.TempSelection{}, apperror.New(apperror.ErrInvalidInput, moduleName,
			"temp_min %g is greater than temp_max %g", *temp.Min, *temp.Max)
	}

	return models.Selection{Season: q.Season, Weather: q.Weather}, temp, nil
}

// queryList returns nil when the parameter is absent and an empty slice for
// a single empty value
func queryList(c *gin.Context, key string) []string {
	values, ok := c.GetQueryArray(key)
	if !ok {
		return nil
	}
	if len(values) == 1 && values[0] == "" {
		return []string{}
	}
	return values
}

// fail writes the error response matching err's kind
func fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	_ = c.Error(err)
	response.Error(c, code, err.Error())
}

func statusFor(err error) int {
	switch {
	case apperror.IsUserError(err):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotLoaded),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
