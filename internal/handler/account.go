package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"activityhub/internal/httputil"
	"activityhub/internal/mediator"
	"activityhub/internal/model"
	"activityhub/internal/service"
)

// AccountHandler serves register, login and the current account.
// These run outside the mediator; they have no Actor before a token exists.
type AccountHandler struct {
	userService *service.UserService
	authService *service.AuthService
	validator   *mediator.Validator
	logger      *zap.Logger
}

func NewAccountHandler(userService *service.UserService, authService *service.AuthService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		userService: userService,
		authService: authService,
		validator:   mediator.NewValidator(),
		logger:      logger.With(zap.String("component", "account")),
	}
}

// Register handles POST /account/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.validate(w, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteConflict(w, "Username already exists")
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already exists")
		default:
			h.logger.Error("register failed", zap.Error(err))
			httputil.WriteInternalError(w, "Failed to register")
		}
		return
	}

	h.writeAccount(w, r, user)
}

// Login handles POST /account/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.validate(w, &req) {
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		httputil.WriteInternalError(w, "Failed to log in")
		return
	}

	h.writeAccount(w, r, user)
}

// Current handles GET /account
func (h *AccountHandler) Current(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), a.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteUnauthorized(w, "Account no longer exists")
			return
		}
		h.logger.Error("load current account failed", zap.Error(err))
		httputil.WriteInternalError(w, "Failed to load account")
		return
	}

	h.writeAccount(w, r, user)
}

func (h *AccountHandler) validate(w http.ResponseWriter, req any) bool {
	err := h.validator.Validate(req)
	if err == nil {
		return true
	}
	var verr *mediator.ValidationError
	if errors.As(err, &verr) {
		httputil.WriteValidation(w, verr.Fields)
		return false
	}
	httputil.WriteBadRequest(w, "Invalid request body")
	return false
}

func (h *AccountHandler) writeAccount(w http.ResponseWriter, r *http.Request, user *model.User) {
	account, err := h.authService.Account(r.Context(), user)
	if err != nil {
		h.logger.Error("build account response failed", zap.Error(err))
		httputil.WriteInternalError(w, "Failed to issue token")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account)
}
