// Package httpapi exposes the ledger service over a JSON HTTP surface
// versioned under /api/v1.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/finapi/internal/common"
	"github.com/dmitrijs2005/finapi/internal/logging"
	"github.com/dmitrijs2005/finapi/internal/server/models"
)

type userService interface {
	Register(ctx context.Context, name string, email string, password string) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Login(ctx context.Context, email string, password string) (*models.User, string, error)
}

type statementService interface {
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Statement, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Statement, error)
	GetBalance(ctx context.Context, userID uuid.UUID) ([]models.Statement, decimal.Decimal, error)
	GetStatementOperation(ctx context.Context, userID uuid.UUID, statementID uuid.UUID) (*models.Statement, error)
}

type Handler struct {
	log        logging.Logger
	users      userService
	statements statementService
	validate   *validator.Validate
	jwtSecret  []byte
}

func NewHandler(log logging.Logger, users userService, statements statementService, validate *validator.Validate, jwtSecret []byte) *Handler {
	return &Handler{
		log:        log,
		users:      users,
		statements: statements,
		validate:   validate,
		jwtSecret:  jwtSecret,
	}
}

func (h *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(h.requestLogger)

	router.Get("/health", h.health)

	router.Route("/api/v1", func(router chi.Router) {
		router.Post("/users", h.createUser)
		router.Post("/sessions", h.createSession)

		router.Group(func(routerWithAuth chi.Router) {
			routerWithAuth.Use(h.authenticator)

			routerWithAuth.Get("/profile", h.getProfile)
			routerWithAuth.Get("/statements/balance", h.getBalance)
			routerWithAuth.Post("/statements/deposit", h.createDeposit)
			routerWithAuth.Post("/statements/withdraw", h.createWithdraw)
			routerWithAuth.Get("/statements/{statement_id}", h.getStatementOperation)
		})
	})

	return router
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "failed to decode request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid name, email or password format")
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeMessage(w, http.StatusBadRequest, "user already exists")
			return
		}

		h.log.Error(r.Context(), "error registering user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "failed to decode request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid email or password format")
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeMessage(w, http.StatusUnauthorized, "incorrect email or password")
			return
		}

		h.log.Error(r.Context(), "error authenticating user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{User: user, Token: token})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "invalid token")
		return
	}

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeMessage(w, http.StatusNotFound, "user not found")
			return
		}

		h.log.Error(r.Context(), "error fetching profile", "user_id", userID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "invalid token")
		return
	}

	history, balance, err := h.statements.GetBalance(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "error computing balance", "user_id", userID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{Statement: history, Balance: balance})
}

func (h *Handler) createDeposit(w http.ResponseWriter, r *http.Request) {
	h.createOperation(w, r, h.statements.Deposit)
}

func (h *Handler) createWithdraw(w http.ResponseWriter, r *http.Request) {
	h.createOperation(w, r, h.statements.Withdraw)
}

func (h *Handler) createOperation(w http.ResponseWriter, r *http.Request,
	record func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Statement, error)) {

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "failed to decode request body")
		return
	}

	statement, err := record(r.Context(), userID, req.Amount, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorInvalidAmount):
			writeMessage(w, http.StatusBadRequest, "amount must be positive")
		case errors.Is(err, common.ErrorInsufficientFunds):
			writeMessage(w, http.StatusBadRequest, "insufficient funds")
		default:
			h.log.Error(r.Context(), "error recording operation", "user_id", userID, "error", err)
			writeMessage(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, statement)
}

func (h *Handler) getStatementOperation(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "invalid token")
		return
	}

	statementID, err := uuid.Parse(chi.URLParam(r, "statement_id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "statement not found")
		return
	}

	statement, err := h.statements.GetStatementOperation(r.Context(), userID, statementID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeMessage(w, http.StatusNotFound, "statement not found")
			return
		}

		h.log.Error(r.Context(), "error fetching statement", "user_id", userID, "statement_id", statementID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, statement)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}
