package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/lost-and-found/internal/model"
	"github.com/iliyamo/lost-and-found/internal/repository"
	"github.com/iliyamo/lost-and-found/internal/utils"
)

// AuthHandler bundles dependencies for the register and login endpoints.
// No session or token is issued: callers pass user ids explicitly on later
// requests.
type AuthHandler struct {
	Users      *repository.UserRepo
	BcryptCost int
	Timeout    time.Duration
	Log        logrus.FieldLogger
}

func NewAuthHandler(users *repository.UserRepo, bcryptCost int, timeout time.Duration, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Users: users, BcryptCost: bcryptCost, Timeout: timeout, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Location *string `json:"location"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResp struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

// Register creates a user.  POST /register
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Log, ValidationError("invalid body"))
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return fail(c, h.Log, ValidationError("missing a requirement (email and password)"))
	}

	u, err := model.NewUser(req.Email, req.Password, trimmedOrNil(req.Location), h.BcryptCost)
	if err != nil {
		return fail(c, h.Log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, h.Log, ConflictError("user already exists"))
		}
		return fail(c, h.Log, err)
	}

	h.Log.WithField("user_id", u.ID).Info("user registered")
	return c.JSON(http.StatusCreated, userResp{Message: "successful addition", User: u.Public()})
}

// Login checks credentials.  POST /login
//
// An unknown email and a wrong password produce the same response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Log, ValidationError("invalid body"))
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return fail(c, h.Log, ValidationError("missing a requirement (email and password)"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.BurnPasswordCheck(req.Password, h.BcryptCost)
			return fail(c, h.Log, AuthError("invalid credentials"))
		}
		return fail(c, h.Log, err)
	}
	if !u.CheckPassword(req.Password) {
		return fail(c, h.Log, AuthError("invalid credentials"))
	}

	return c.JSON(http.StatusOK, userResp{Message: "login successful", User: u.Public()})
}

// trimmedOrNil trims s and maps an empty result to nil.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
