// internal/handlers/report/report_handler.go
package report

import (
	"fmt"
	"net/http"
	"time"

	"hesabu-service/internal/middleware"
	"hesabu-service/internal/pkg/response"
	service "hesabu-service/internal/service/report"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

type periodQuery struct {
	From      time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To        time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
	Breakdown bool      `form:"breakdown"`
	Format    string    `form:"format" binding:"omitempty,oneof=json csv"`
}

// VAT returns the VAT position for a period, as JSON or CSV
func (h *ReportHandler) VAT(c *gin.Context) {
	var q periodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	// The CSV export always carries the line-level breakdown.
	withBreakdown := q.Breakdown || q.Format == "csv"

	scope := middleware.MustGetTenantScope(c)
	r, err := h.reportService.BuildVATReport(c.Request.Context(), scope, q.From, q.To, withBreakdown)
	if err != nil {
		response.FromError(c, "failed to build VAT report", err)
		return
	}

	if q.Format == "csv" {
		writeCSVHeaders(c, fmt.Sprintf("vat-report-%s.csv", q.From.Format("2006-01")))
		if err := service.WriteVATReportCSV(c.Writer, r); err != nil {
			response.FromError(c, "failed to export report", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "VAT report built", r)
}

// Profit returns net profit for a period, as JSON or CSV
func (h *ReportHandler) Profit(c *gin.Context) {
	var q periodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	r, err := h.reportService.BuildProfitReport(c.Request.Context(), scope, q.From, q.To, q.Breakdown)
	if err != nil {
		response.FromError(c, "failed to build profit report", err)
		return
	}

	if q.Format == "csv" {
		writeCSVHeaders(c, fmt.Sprintf("profit-report-%s.csv", q.From.Format("2006-01")))
		if err := service.WriteProfitReportCSV(c.Writer, r); err != nil {
			response.FromError(c, "failed to export report", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "profit report built", r)
}

func writeCSVHeaders(c *gin.Context, filename string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
}
