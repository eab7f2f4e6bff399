package statements

import (
	"context"

	"github.com/dmitrijs2005/finapi/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, statement *models.Statement) (*models.Statement, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Statement, error)
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]models.Statement, error)
}
