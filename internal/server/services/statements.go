package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/finapi/internal/common"
	"github.com/dmitrijs2005/finapi/internal/dbx"
	"github.com/dmitrijs2005/finapi/internal/server/models"
	"github.com/dmitrijs2005/finapi/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementService records ledger operations and computes balances.
// The balance is always recomputed from the full operation history, never
// cached as a running total.
type StatementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewStatementService(db *sql.DB, m repomanager.RepositoryManager) *StatementService {
	return &StatementService{
		db:          db,
		repomanager: m,
	}
}

// Deposit records a deposit operation. The amount must be positive.
func (s *StatementService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Statement, error) {

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, common.ErrorInvalidAmount
	}

	statement := &models.Statement{
		UserID:      userID,
		Type:        models.OperationDeposit,
		Amount:      amount,
		Description: description,
	}

	repo := s.repomanager.Statements(s.db)

	statement, err := repo.Create(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("error creating statement: %v", err)
	}

	return statement, nil
}

// Withdraw records a withdrawal after checking that the current balance covers
// the amount. The balance check and the insert run inside one serializable
// transaction so two concurrent withdrawals cannot both pass the check.
func (s *StatementService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Statement, error) {

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, common.ErrorInvalidAmount
	}

	var statement *models.Statement

	err := dbx.WithTx(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Statements(tx)

		history, err := repo.FindAllByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("error loading statement history: %v", err)
		}

		if amount.GreaterThan(balanceOf(history)) {
			return common.ErrorInsufficientFunds
		}

		statement, err = repo.Create(ctx, &models.Statement{
			UserID:      userID,
			Type:        models.OperationWithdraw,
			Amount:      amount,
			Description: description,
		})
		if err != nil {
			return fmt.Errorf("error creating statement: %v", err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, common.ErrorInsufficientFunds) {
			return nil, common.ErrorInsufficientFunds
		}
		return nil, err
	}

	return statement, nil
}

// GetBalance returns the full ordered operation history together with the
// recomputed balance.
func (s *StatementService) GetBalance(ctx context.Context, userID uuid.UUID) ([]models.Statement, decimal.Decimal, error) {

	repo := s.repomanager.Statements(s.db)

	history, err := repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("error loading statement history: %v", err)
	}

	return history, balanceOf(history), nil
}

// GetStatementOperation returns one operation, failing with
// common.ErrorNotFound both when it does not exist and when it belongs to a
// different user.
func (s *StatementService) GetStatementOperation(ctx context.Context, userID uuid.UUID, statementID uuid.UUID) (*models.Statement, error) {

	repo := s.repomanager.Statements(s.db)

	statement, err := repo.GetByID(ctx, statementID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if statement.UserID != userID {
		return nil, common.ErrorNotFound
	}

	return statement, nil
}

// balanceOf sums deposits minus withdrawals over the full history.
func balanceOf(history []models.Statement) decimal.Decimal {
	balance := decimal.Zero
	for _, statement := range history {
		switch statement.Type {
		case models.OperationDeposit:
			balance = balance.Add(statement.Amount)
		case models.OperationWithdraw:
			balance = balance.Sub(statement.Amount)
		}
	}
	return balance
}
