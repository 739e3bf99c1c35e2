package users

import (
	"context"

	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
