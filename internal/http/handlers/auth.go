package handlers

import (
	"net/http"

	"github.com/hongminglow/kalafo-api/internal/http/respond"
	"github.com/hongminglow/kalafo-api/internal/middleware"
	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/models/dto"
	"github.com/hongminglow/kalafo-api/internal/service"
)

// AuthHandler owns the register, login, and profile endpoints.
type AuthHandler struct {
	accounts *service.Accounts
	guard    *middleware.Guard
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts *service.Accounts, guard *middleware.Guard) *AuthHandler {
	return &AuthHandler{accounts: accounts, guard: guard}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register", h.handleRegister)
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.HandleFunc("GET /api/me", h.guard.Allow(h.handleMe))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Fail(w, r, err)
		return
	}
	created, err := h.accounts.Register(r.Context(), service.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "User registered successfully", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Fail(w, r, err)
		return
	}
	token, user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request, user models.User) {
	respond.JSON(w, http.StatusOK, "ok", user)
}
