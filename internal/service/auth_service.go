package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/repository"
	"github.com/parkpass/ticketing/internal/ticketing"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const minPasswordLength = 8

// UserClaims is the JWT payload. Subject carries the user id.
type UserClaims struct {
	Role  string   `json:"role"`
	Parks []string `json:"parks,omitempty"`
	jwt.RegisteredClaims
}

// AuthService logs staff in and turns their tokens back into actors.
type AuthService struct {
	users repository.UserRepository
	parks repository.ParkRepository

	secret     []byte
	ttl        time.Duration
	bcryptCost int

	log *logrus.Logger
	now func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	parks repository.ParkRepository,
	secret string,
	ttl time.Duration,
	log *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		parks:      parks,
		secret:     []byte(secret),
		ttl:        ttl,
		bcryptCost: bcrypt.DefaultCost,
		log:        log,
		now:        time.Now,
	}
}

// WithBcryptCost lowers the hashing cost, for tests.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.WithField("user_id", u.ID).Warn("login failed: password mismatch")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	exp := now.Add(s.ttl)
	claims := UserClaims{
		Role:  u.Role,
		Parks: []string(u.AssignedParks),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user logged in")
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// ParseToken validates a bearer token and returns the actor it names.
func (s *AuthService) ParseToken(tokenString string) (ticketing.Actor, error) {
	claims := &UserClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return ticketing.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ticketing.Actor{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	role := ticketing.Role(claims.Role)
	if !role.Valid() {
		return ticketing.Actor{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	parks, err := parseParkIDs(claims.Parks)
	if err != nil {
		return ticketing.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return ticketing.Actor{UserID: userID, Role: role, AssignedParks: parks}, nil
}

type UserInput struct {
	Email         string
	Name          string
	Password      string
	Role          ticketing.Role
	AssignedParks []uuid.UUID
}

// CreateUser adds a staff account. Super-admin only; park-scoped roles need at
// least one existing park.
func (s *AuthService) CreateUser(ctx context.Context, actor ticketing.Actor, in UserInput) (*model.User, error) {
	if err := ticketing.AuthorizeGlobal(actor, ticketing.ActionManageUsers); err != nil {
		return nil, err
	}
	return s.createUser(ctx, in)
}

func (s *AuthService) ListUsers(ctx context.Context, actor ticketing.Actor) ([]model.User, error) {
	if err := ticketing.AuthorizeGlobal(actor, ticketing.ActionManageUsers); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *AuthService) createUser(ctx context.Context, in UserInput) (*model.User, error) {
	if trim(in.Email) == "" {
		return nil, &ticketing.FieldError{Field: "email", Err: ticketing.ErrMissingField}
	}
	if len(in.Password) < minPasswordLength {
		return nil, &ticketing.FieldError{Field: "password", Err: ticketing.ErrMissingField,
			Detail: fmt.Sprintf("at least %d characters", minPasswordLength)}
	}
	if !in.Role.Valid() {
		return nil, &ticketing.FieldError{Field: "role", Err: ticketing.ErrWrongRole, Detail: string(in.Role)}
	}

	parks, err := s.assignedParks(ctx, in.Role, in.AssignedParks)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:         in.Email,
		Name:          trim(in.Name),
		PasswordHash:  string(hash),
		Role:          string(in.Role),
		AssignedParks: datatypes.NewJSONSlice(parks),
		IsActive:      true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user created")
	return u, nil
}

// assignedParks checks that a park-scoped role gets at least one existing
// park. Super-admins carry none.
func (s *AuthService) assignedParks(ctx context.Context, role ticketing.Role, ids []uuid.UUID) ([]string, error) {
	parks := make([]string, 0, len(ids))
	if role == ticketing.RoleSuperAdmin {
		return parks, nil
	}
	if len(ids) == 0 {
		return nil, &ticketing.FieldError{Field: "assignedParks", Err: ticketing.ErrMissingField}
	}
	for _, id := range ids {
		if _, err := s.parks.GetPark(ctx, id); err != nil {
			return nil, err
		}
		parks = append(parks, id.String())
	}
	return parks, nil
}

// UserUpdate holds the changes to a staff account. Nil and empty fields keep
// the current value.
type UserUpdate struct {
	Name          *string
	Password      string
	Role          ticketing.Role
	AssignedParks []uuid.UUID
	IsActive      *bool
}

// UpdateUser edits a staff account. Super-admin only; the park rules of
// CreateUser apply to the resulting role. Nobody can deactivate or demote
// their own account.
func (s *AuthService) UpdateUser(ctx context.Context, actor ticketing.Actor, id uuid.UUID, in UserUpdate) (*model.User, error) {
	if err := ticketing.AuthorizeGlobal(actor, ticketing.ActionManageUsers); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role := ticketing.Role(u.Role)
	if in.Role != "" {
		if !in.Role.Valid() {
			return nil, &ticketing.FieldError{Field: "role", Err: ticketing.ErrWrongRole, Detail: string(in.Role)}
		}
		role = in.Role
	}
	self := u.ID == actor.UserID
	if self && role != ticketing.Role(u.Role) {
		return nil, &ticketing.FieldError{Field: "role", Err: ticketing.ErrPermissionDenied, Detail: "cannot change your own role"}
	}
	if self && in.IsActive != nil && !*in.IsActive {
		return nil, &ticketing.FieldError{Field: "isActive", Err: ticketing.ErrPermissionDenied, Detail: "cannot deactivate your own account"}
	}

	ids := in.AssignedParks
	if ids == nil {
		current, err := parseParkIDs([]string(u.AssignedParks))
		if err != nil {
			return nil, err
		}
		ids = current
	}
	parks, err := s.assignedParks(ctx, role, ids)
	if err != nil {
		return nil, err
	}

	if in.Password != "" {
		if len(in.Password) < minPasswordLength {
			return nil, &ticketing.FieldError{Field: "password", Err: ticketing.ErrMissingField,
				Detail: fmt.Sprintf("at least %d characters", minPasswordLength)}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if in.Name != nil {
		u.Name = trim(*in.Name)
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	u.Role = string(role)
	u.AssignedParks = datatypes.NewJSONSlice(parks)

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":  u.ID,
		"role":     u.Role,
		"active":   u.IsActive,
		"actor_id": actor.UserID,
	}).Info("user updated")
	return s.users.FindByID(ctx, id)
}

// EnsureSuperAdmin creates the bootstrap super-admin unless the email is
// already registered.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	_, err = s.createUser(ctx, UserInput{
		Email:    email,
		Name:     "Super Admin",
		Password: password,
		Role:     ticketing.RoleSuperAdmin,
	})
	if errors.Is(err, repository.ErrEmailTaken) {
		return nil
	}
	return err
}

func parseParkIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("bad park id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
