package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parkpass/ticketing/internal/service"
	"github.com/parkpass/ticketing/internal/ticketing"
)

// Handler serves the REST API on top of the services.
type Handler struct {
	tickets *service.TicketService
	catalog *service.CatalogService
	auth    *service.AuthService
	reports *service.ReportService
	log     *logrus.Logger
}

func NewHandler(
	tickets *service.TicketService,
	catalog *service.CatalogService,
	auth *service.AuthService,
	reports *service.ReportService,
	log *logrus.Logger,
) *Handler {
	return &Handler{tickets: tickets, catalog: catalog, auth: auth, reports: reports, log: log}
}

func (h *Handler) fail(c *gin.Context, err error) {
	writeError(c, h.log, err)
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// uuidParam parses a path id; an unparsable id is answered with notFound.
func (h *Handler) uuidParam(c *gin.Context, name string, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.fail(c, notFound)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// parseParkID accepts an empty id as "not given" so the validator can report it.
func parseParkID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ticketing.FieldError{Field: "parkId", Err: ticketing.ErrParkUnavailable, Detail: "park not found"}
	}
	return id, nil
}
