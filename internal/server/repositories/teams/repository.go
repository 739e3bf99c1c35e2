package teams

import (
	"context"

	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Team, error)
}
