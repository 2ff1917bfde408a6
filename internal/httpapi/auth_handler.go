package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parkpass/ticketing/internal/repository"
	"github.com/parkpass/ticketing/internal/service"
	"github.com/parkpass/ticketing/internal/ticketing"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Email and password are required.")
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUserResponse(res.User),
	}, "Logged in.")
}

// Me handles GET /api/admin/me.
func (h *Handler) Me(c *gin.Context) {
	actor := actorFrom(c)
	parks := make([]string, 0, len(actor.AssignedParks))
	for _, id := range actor.AssignedParks {
		parks = append(parks, id.String())
	}
	respond(c, http.StatusOK, gin.H{
		"id":            actor.UserID,
		"role":          actor.Role,
		"assignedParks": parks,
	}, "")
}

type createUserRequest struct {
	Email         string   `json:"email" binding:"required"`
	Name          string   `json:"name"`
	Password      string   `json:"password" binding:"required"`
	Role          string   `json:"role" binding:"required"`
	AssignedParks []string `json:"assignedParks"`
}

// CreateUser handles POST /api/admin/users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Email, password and role are required.")
		return
	}
	parks, err := parseParkIDList(req.AssignedParks)
	if err != nil {
		h.fail(c, err)
		return
	}

	u, err := h.auth.CreateUser(c.Request.Context(), actorFrom(c), service.UserInput{
		Email:         req.Email,
		Name:          req.Name,
		Password:      req.Password,
		Role:          ticketing.Role(req.Role),
		AssignedParks: parks,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, toUserResponse(u), "User created.")
}

type updateUserRequest struct {
	Name          *string  `json:"name"`
	Password      string   `json:"password"`
	Role          string   `json:"role"`
	AssignedParks []string `json:"assignedParks"`
	IsActive      *bool    `json:"isActive"`
}

// UpdateUser handles PUT /api/admin/users/:id. Omitted fields keep their value.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", repository.ErrUserNotFound)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid input. Please check your fields.")
		return
	}
	in := service.UserUpdate{
		Name:     req.Name,
		Password: req.Password,
		Role:     ticketing.Role(req.Role),
		IsActive: req.IsActive,
	}
	if req.AssignedParks != nil {
		parks, err := parseParkIDList(req.AssignedParks)
		if err != nil {
			h.fail(c, err)
			return
		}
		in.AssignedParks = parks
	}

	u, err := h.auth.UpdateUser(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toUserResponse(u), "User updated.")
}

func parseParkIDList(raw []string) ([]uuid.UUID, error) {
	parks := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, ticketing.ErrParkNotFound
		}
		parks = append(parks, id)
	}
	return parks, nil
}

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	respond(c, http.StatusOK, out, "")
}
