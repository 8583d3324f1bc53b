package services

import (
	"context"
	"fmt"
	"math"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/repository"
	"github.com/google/uuid"
)

const (
	DefaultHistoryPageSize = 20
	MaxHistoryPageSize     = 50
)

type HistoryPage struct {
	Items []models.Humanization
	Total int64
	Page  int
	Limit int
}

type HistoryService struct {
	repo repository.HistoryRepository
}

func NewHistoryService(repo repository.HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// List returns the user's humanizations newest first. page is 1-based;
// out-of-range page and limit values are clamped.
func (s *HistoryService) List(ctx context.Context, userID uuid.UUID, page, limit int) (*HistoryPage, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultHistoryPageSize
	}
	if limit > MaxHistoryPageSize {
		limit = MaxHistoryPageSize
	}

	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}

	items, total, err := s.repo.ListHumanizations(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return &HistoryPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}
