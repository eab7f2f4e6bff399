package httpapi

import (
	"github.com/dmitrijs2005/finapi/internal/server/models"
	"github.com/shopspring/decimal"
)

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type CreateSessionRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OperationRequest is the body of deposit and withdraw requests. The amount
// is validated by the service so that a missing or zero value fails the same
// way as an explicit non-positive one.
type OperationRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type SessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type BalanceResponse struct {
	Statement []models.Statement `json:"statement"`
	Balance   decimal.Decimal    `json:"balance"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
