package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parkpass/ticketing/internal/service"
	"github.com/parkpass/ticketing/internal/ticketing"
)

// ListDistricts handles GET /api/districts.
func (h *Handler) ListDistricts(c *gin.Context) {
	districts, err := h.catalog.ListDistricts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, districts, "")
}

type districtRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// CreateDistrict handles POST /api/admin/districts.
func (h *Handler) CreateDistrict(c *gin.Context) {
	var req districtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "District name is required.")
		return
	}
	d, err := h.catalog.CreateDistrict(c.Request.Context(), actorFrom(c), service.DistrictInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, d, "District created.")
}

// GetDistrict handles GET /api/districts/:id.
func (h *Handler) GetDistrict(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", ticketing.ErrDistrictNotFound)
	if !ok {
		return
	}
	d, err := h.catalog.GetDistrict(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, d, "")
}

// ListDistrictParks handles GET /api/districts/:id/parks. Inactive parks are hidden.
func (h *Handler) ListDistrictParks(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", ticketing.ErrDistrictNotFound)
	if !ok {
		return
	}
	parks, err := h.catalog.ListDistrictParks(c.Request.Context(), id, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, parks, "")
}

// UpdateDistrict handles PUT /api/admin/districts/:id.
func (h *Handler) UpdateDistrict(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", ticketing.ErrDistrictNotFound)
	if !ok {
		return
	}
	var req districtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "District name is required.")
		return
	}
	d, err := h.catalog.UpdateDistrict(c.Request.Context(), actorFrom(c), id, service.DistrictInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, d, "District updated.")
}

// DeleteDistrict handles DELETE /api/admin/districts/:id.
func (h *Handler) DeleteDistrict(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", ticketing.ErrDistrictNotFound)
	if !ok {
		return
	}
	if err := h.catalog.DeleteDistrict(c.Request.Context(), actorFrom(c), id); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "District deleted.")
}

// ListParks handles GET /api/parks?districtId=. Inactive parks are hidden.
func (h *Handler) ListParks(c *gin.Context) {
	districtID, ok := queryUUID(c, "districtId")
	if !ok {
		h.badRequest(c, "districtId must be a district id.")
		return
	}
	parks, err := h.catalog.ListParks(c.Request.Context(), districtID, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, parks, "")
}

// ListAllParks handles GET /api/admin/parks, inactive parks included.
func (h *Handler) ListAllParks(c *gin.Context) {
	districtID, ok := queryUUID(c, "districtId")
	if !ok {
		h.badRequest(c, "districtId must be a district id.")
		return
	}
	parks, err := h.catalog.ListParks(c.Request.Context(), districtID, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, parks, "")
}

// GetPark handles GET /api/parks/:id.
func (h *Handler) GetPark(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", ticketing.ErrParkNotFound)
	if !ok {
		return
	}
	p, err := h.catalog.GetPark(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, p, "")
}

type parkRequest struct {
	DistrictID   string   `json:"districtId"`
	Name         string   `json:"name"`
	AdultPrice   int64    `json:"adultPrice"`
	ChildPrice   int64    `json:"childPrice"`
	Capacity     int      `json:"capacity"`
	Features     []string `json:"features"`
	OpeningHours string   `json:"openingHours"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
}

func (r parkRequest) input() (service.ParkInput, error) {
	in := service.ParkInput{
		Name:         r.Name,
		AdultPrice:   r.AdultPrice,
		ChildPrice:   r.ChildPrice,
		Capacity:     r.Capacity,
		Features:     r.Features,
		OpeningHours: r.OpeningHours,
		Description:  r.Description,
		Image:        r.Image,
	}
	if r.DistrictID != "" {
		id, err := uuid.Parse(r.DistrictID)
		if err != nil {
			return in, ticketing.ErrDistrictNotFound
		}
		in.DistrictID = id
	}
	return in, nil
}

// CreatePark handles POST /api/admin/parks.
func (h *Handler) CreatePark(c *gin.Context) {
	var req parkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid input. Please check your fields.")
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(c, err)
		return
	}
	p, err := h.catalog.CreatePark(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, p, "Park created.")
}

// UpdatePark handles PUT /api/admin/parks/:id.
func (h *Handler) UpdatePark(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", ticketing.ErrParkNotFound)
	if !ok {
		return
	}
	var req parkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid input. Please check your fields.")
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(c, err)
		return
	}
	p, err := h.catalog.UpdatePark(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, p, "Park updated.")
}

type parkActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// SetParkActive handles PUT /api/admin/parks/:id/active.
func (h *Handler) SetParkActive(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", ticketing.ErrParkNotFound)
	if !ok {
		return
	}
	var req parkActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "isActive is required.")
		return
	}
	p, err := h.catalog.SetParkActive(c.Request.Context(), actorFrom(c), id, *req.IsActive)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, p, "Park updated.")
}

// DeletePark handles DELETE /api/admin/parks/:id.
func (h *Handler) DeletePark(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", ticketing.ErrParkNotFound)
	if !ok {
		return
	}
	if err := h.catalog.DeletePark(c.Request.Context(), actorFrom(c), id); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Park deleted.")
}
