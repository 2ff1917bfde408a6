package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SalesReport handles GET /api/admin/analytics/sales?period=daily|weekly|monthly|yearly.
func (h *Handler) SalesReport(c *gin.Context) {
	report, err := h.reports.Sales(c.Request.Context(), actorFrom(c), c.Query("period"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toSalesResponse(report), "")
}

// VisitorReport handles GET /api/admin/analytics/visitors?period=.
func (h *Handler) VisitorReport(c *gin.Context) {
	report, err := h.reports.Visitors(c.Request.Context(), actorFrom(c), c.Query("period"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toVisitorResponse(report), "")
}

// ParkPopularity handles GET /api/admin/analytics/popularity.
func (h *Handler) ParkPopularity(c *gin.Context) {
	ranking, err := h.reports.Popularity(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toPopularityResponse(ranking), "")
}
