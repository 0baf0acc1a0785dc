package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

func (s *Usecase) CategoryList(ctx context.Context) ([]entity.Category, error) {
	ctx, span := s.startSpan(ctx, "CategoryList")
	defer span.End()

	categories, err := s.repoDB.ListCategories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list categories", "error", err)
		return nil, goerror.NewServer(err)
	}

	return categories, nil
}
