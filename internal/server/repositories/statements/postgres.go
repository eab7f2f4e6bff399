package statements

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/finapi/internal/common"
	"github.com/dmitrijs2005/finapi/internal/dbx"
	"github.com/dmitrijs2005/finapi/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, statement *models.Statement) (*models.Statement, error) {

	query :=
		`INSERT INTO statements (user_id, type, amount, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		statement.UserID, statement.Type, statement.Amount, statement.Description).
		Scan(&statement.ID, &statement.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return statement, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Statement, error) {
	query :=
		`SELECT id, user_id, type, amount, description, created_at FROM statements
		 WHERE id = $1
		 `

	statement := &models.Statement{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&statement.ID, &statement.UserID, &statement.Type,
			&statement.Amount, &statement.Description, &statement.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return statement, nil
}

func (r *PostgresRepository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]models.Statement, error) {
	query :=
		`SELECT id, user_id, type, amount, description, created_at FROM statements
		 WHERE user_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	result := make([]models.Statement, 0)
	for rows.Next() {
		var statement models.Statement
		err := rows.Scan(&statement.ID, &statement.UserID, &statement.Type,
			&statement.Amount, &statement.Description, &statement.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}
		result = append(result, statement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %v", err)
	}

	return result, nil
}
