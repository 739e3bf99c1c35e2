package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/pointpool/internal/server/models"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/repomanager"
)

// CatalogService serves the read-only team and champion listings.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager) *CatalogService {
	return &CatalogService{db: db, repomanager: m}
}

func (s *CatalogService) Champions(ctx context.Context) ([]models.Champion, error) {
	list, err := s.repomanager.Champions(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list champions: %w", err)
	}
	return list, nil
}

func (s *CatalogService) Teams(ctx context.Context) ([]models.Team, error) {
	list, err := s.repomanager.Teams(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return list, nil
}
