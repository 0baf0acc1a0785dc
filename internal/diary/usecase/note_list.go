package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/diarium/internal/diary/entity"
	"github.com/shandysiswandi/diarium/internal/pkg/goerror"
)

const (
	defaultPageSize int32 = 10
	maxPageSize     int32 = 100
)

type NoteListInput struct {
	FilterBy string
	SortBy   string
	Page     int32
	Size     int32
}

type NoteListOutput struct {
	Notes []entity.Note
	Total int64
	Page  int32
	Size  int32
}

func (s *Usecase) NoteList(ctx context.Context, in NoteListInput) (*NoteListOutput, error) {
	ctx, span := s.startSpan(ctx, "NoteList")
	defer span.End()

	ownerID, err := authUserID(ctx)
	if err != nil {
		return nil, err
	}

	if in.Page < 1 {
		in.Page = 1
	}
	if in.Size < 1 {
		in.Size = defaultPageSize
	}
	if in.Size > maxPageSize {
		in.Size = maxPageSize
	}

	now := s.clock.Now()
	filter := entity.NoteListFilter{
		OwnerID:  ownerID,
		FilterBy: entity.NoteFilterFromString(in.FilterBy),
		SortBy:   entity.NoteSortFromString(in.SortBy),
		Today:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		Page:     in.Page,
		Size:     in.Size,
	}

	notes, total, err := s.repoDB.ListNotes(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list notes", "owner_id", ownerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &NoteListOutput{Notes: notes, Total: total, Page: in.Page, Size: in.Size}, nil
}
