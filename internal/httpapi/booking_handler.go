package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/ticketing"
)

type createBookingRequest struct {
	ParkID       string `json:"parkId"`
	VisitDate    string `json:"visitDate"`
	VisitorName  string `json:"visitorName"`
	VisitorEmail string `json:"visitorEmail"`
	VisitorPhone string `json:"visitorPhone"`
	Adults       int    `json:"adults"`
	Children     int    `json:"children"`
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid input. Please check your fields.")
		return
	}
	parkID, err := parseParkID(req.ParkID)
	if err != nil {
		h.fail(c, err)
		return
	}

	b, err := h.tickets.CreateBooking(c.Request.Context(), ticketing.BookingRequest{
		ParkID:       parkID,
		VisitDate:    req.VisitDate,
		VisitorName:  req.VisitorName,
		VisitorEmail: req.VisitorEmail,
		VisitorPhone: req.VisitorPhone,
		Adults:       req.Adults,
		Children:     req.Children,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, toTicketResponse(*b), "Booking created.")
}

// GetBooking handles GET /api/bookings/:ref.
func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.tickets.GetBooking(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponse(*b), "")
}

type paymentRequest struct {
	Status        string `json:"status" binding:"required"`
	PaymentID     string `json:"paymentId"`
	PaymentMethod string `json:"paymentMethod"`
}

// RecordPayment handles PUT /api/bookings/:ref/payment.
func (h *Handler) RecordPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Payment status is required.")
		return
	}

	b, err := h.tickets.RecordPayment(c.Request.Context(), c.Param("ref"), ticketing.PaymentResult{
		Status:    model.PaymentStatus(req.Status),
		PaymentID: req.PaymentID,
		Method:    req.PaymentMethod,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponse(*b), "Payment recorded.")
}

// MarkPrinted handles PUT /api/bookings/:ref/print.
func (h *Handler) MarkPrinted(c *gin.Context) {
	if err := h.tickets.MarkPrinted(c.Request.Context(), c.Param("ref")); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Ticket marked as printed.")
}

// MarkDownloaded handles PUT /api/bookings/:ref/download.
func (h *Handler) MarkDownloaded(c *gin.Context) {
	if err := h.tickets.MarkDownloaded(c.Request.Context(), c.Param("ref")); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Ticket marked as downloaded.")
}

// PreviewPrice handles GET /api/parks/:id/price?adults=&children=.
func (h *Handler) PreviewPrice(c *gin.Context) {
	parkID, ok := h.uuidParam(c, "id", ticketing.ErrParkNotFound)
	if !ok {
		return
	}
	adults, okA := queryInt(c, "adults", 0)
	children, okC := queryInt(c, "children", 0)
	if !okA || !okC {
		h.badRequest(c, "adults and children must be whole numbers.")
		return
	}

	q, err := h.tickets.PreviewPrice(c.Request.Context(), parkID, adults, children)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, q, "")
}
