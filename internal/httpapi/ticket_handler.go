package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/pagination"
	"github.com/parkpass/ticketing/internal/service"
	"github.com/parkpass/ticketing/internal/ticketing"
)

// ListTickets handles GET /api/admin/tickets.
func (h *Handler) ListTickets(c *gin.Context) {
	parkID, ok := queryUUID(c, "parkId")
	if !ok {
		h.badRequest(c, "parkId must be a park id.")
		return
	}
	page, okP := queryInt(c, "page", 1)
	size, okS := queryInt(c, "pageSize", pagination.DefaultPageSize)
	if !okP || !okS {
		h.badRequest(c, "page and pageSize must be whole numbers.")
		return
	}

	q := service.TicketQuery{
		ParkID:        parkID,
		Status:        model.TicketStatus(c.Query("status")),
		PaymentStatus: model.PaymentStatus(c.Query("paymentStatus")),
		Search:        c.Query("search"),
	}
	if raw := c.Query("visitDate"); raw != "" {
		d, err := ticketing.ParseVisitDate(raw)
		if err != nil {
			h.fail(c, err)
			return
		}
		q.VisitDate = &d
	}

	result, err := h.tickets.ListTickets(c.Request.Context(), actorFrom(c), q, page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, pagination.Map(result, toTicketResponse), "")
}

// GetTicket handles GET /api/admin/tickets/:ref.
func (h *Handler) GetTicket(c *gin.Context) {
	b, err := h.tickets.GetTicket(c.Request.Context(), actorFrom(c), c.Param("ref"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponse(*b), "")
}

// TicketHistory handles GET /api/admin/tickets/:ref/events.
func (h *Handler) TicketHistory(c *gin.Context) {
	events, err := h.tickets.TicketHistory(c.Request.Context(), actorFrom(c), c.Param("ref"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toEventResponses(events), "")
}

// MarkTicketUsed handles PUT /api/admin/tickets/:ref/use.
func (h *Handler) MarkTicketUsed(c *gin.Context) {
	b, err := h.tickets.MarkTicketUsed(c.Request.Context(), actorFrom(c), c.Param("ref"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponse(*b), "Ticket marked as used.")
}

// CancelTicket handles PUT /api/admin/tickets/:ref/cancel.
func (h *Handler) CancelTicket(c *gin.Context) {
	b, err := h.tickets.CancelTicket(c.Request.Context(), actorFrom(c), c.Param("ref"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponse(*b), "Ticket cancelled.")
}

// DeleteTicket handles DELETE /api/admin/tickets/:ref.
func (h *Handler) DeleteTicket(c *gin.Context) {
	if err := h.tickets.DeleteTicket(c.Request.Context(), actorFrom(c), c.Param("ref")); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Ticket deleted.")
}
