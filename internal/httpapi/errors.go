package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/parkpass/ticketing/internal/repository"
	"github.com/parkpass/ticketing/internal/service"
	"github.com/parkpass/ticketing/internal/ticketing"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    code,
		Message: message,
	})
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// Order matters: the wrapped permission errors come before ErrPermissionDenied.
var errorMappings = []errorMapping{
	{ticketing.ErrParkUnavailable, http.StatusUnprocessableEntity, "PARK_UNAVAILABLE", "This park is not available for booking."},
	{ticketing.ErrInvalidVisitDate, http.StatusBadRequest, "INVALID_VISIT_DATE", "Please choose a valid visit date, today or later."},
	{ticketing.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL", "Please enter a valid email address."},
	{ticketing.ErrInvalidPartySize, http.StatusBadRequest, "INVALID_PARTY_SIZE", "At least one visitor is required."},
	{ticketing.ErrInvalidPriceConfiguration, http.StatusUnprocessableEntity, "INVALID_PRICE_CONFIGURATION", "Ticket prices for this park are misconfigured."},
	{ticketing.ErrCapacityExceeded, http.StatusUnprocessableEntity, "CAPACITY_EXCEEDED", "Not enough places left for the selected date."},
	{ticketing.ErrMissingField, http.StatusBadRequest, "MISSING_FIELD", "A required field is missing."},
	{ticketing.ErrFieldTooLong, http.StatusBadRequest, "FIELD_TOO_LONG", "A field is longer than allowed."},
	{ticketing.ErrInvalidPeriod, http.StatusBadRequest, "INVALID_PERIOD", "Period must be daily, weekly, monthly or yearly."},
	{ticketing.ErrInvalidPaymentStatus, http.StatusBadRequest, "INVALID_PAYMENT_STATUS", "Unknown payment status."},
	{ticketing.ErrInvalidCapacity, http.StatusBadRequest, "INVALID_CAPACITY", "Capacity must be a positive number."},

	{ticketing.ErrTicketNotFound, http.StatusNotFound, "TICKET_NOT_FOUND", "Ticket not found."},
	{ticketing.ErrParkNotFound, http.StatusNotFound, "PARK_NOT_FOUND", "Park not found."},
	{ticketing.ErrDistrictNotFound, http.StatusNotFound, "DISTRICT_NOT_FOUND", "District not found."},
	{repository.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User not found."},

	{ticketing.ErrWrongPark, http.StatusForbidden, "WRONG_PARK", "This ticket belongs to a different park."},
	{ticketing.ErrWrongRole, http.StatusForbidden, "WRONG_ROLE", "Your role is not allowed to do this."},
	{ticketing.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED", "Permission denied."},

	{ticketing.ErrAlreadyUsed, http.StatusConflict, "ALREADY_USED", "This ticket has already been used."},
	{ticketing.ErrTicketCancelled, http.StatusConflict, "TICKET_CANCELLED", "This ticket has been cancelled."},
	{ticketing.ErrCannotCancelUsedTicket, http.StatusConflict, "CANNOT_CANCEL_USED_TICKET", "A used ticket cannot be cancelled."},
	{ticketing.ErrPaymentAlreadyCompleted, http.StatusConflict, "PAYMENT_ALREADY_COMPLETED", "Payment for this booking is already completed."},
	{ticketing.ErrConflict, http.StatusConflict, "CONFLICT", "The ticket was changed by someone else. Please retry."},
	{ticketing.ErrDuplicateTicketNo, http.StatusConflict, "CONFLICT", "Could not allocate a ticket number. Please retry."},
	{ticketing.ErrDistrictHasParks, http.StatusConflict, "DISTRICT_HAS_PARKS", "Remove the district's parks first."},
	{ticketing.ErrParkHasBookings, http.StatusConflict, "PARK_HAS_BOOKINGS", "This park has bookings; deactivate it instead."},
	{repository.ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN", "This email is already registered."},

	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password."},
	{service.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN", "Your session has expired. Please log in again."},
}

// writeError maps err onto a status code and a user-facing message.
// Anything outside the known taxonomy is logged and reported as a 500.
func writeError(c *gin.Context, log *logrus.Logger, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		resp := ErrorResponse{
			Error:   http.StatusText(m.status),
			Code:    m.code,
			Message: m.message,
		}
		var fe *ticketing.FieldError
		if errors.As(err, &fe) {
			resp.Field = fe.Field
		}
		c.AbortWithStatusJSON(m.status, resp)
		return
	}

	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("request failed")
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL", "Something went wrong. Please try again later.")
}
