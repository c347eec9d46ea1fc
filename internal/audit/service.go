package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumina-spa/lumina/internal/authz"
	"github.com/lumina-spa/lumina/internal/observability"
)

// Service records access denials and serves the audit timeline.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService builds a Service instance. A nil metrics handle disables the
// denial counter.
func NewService(repo Repository, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, logger: logger, metrics: metrics}
}

// RecordDenial persists a guard rejection. Failures are logged and dropped:
// audit writes must never turn a denial into a 500.
func (s *Service) RecordDenial(ctx context.Context, d authz.Denial) {
	s.metrics.CountDenial(d.Role.String(), d.Reason)
	if s.repo == nil {
		return
	}
	err := s.repo.Insert(ctx, AccessDenial{
		PrincipalID: d.PrincipalID,
		Role:        d.Role.String(),
		Method:      d.Method,
		Path:        d.Path,
		RemoteAddr:  d.RemoteAddr,
		Reason:      d.Reason,
		OccurredAt:  d.At,
	})
	if err != nil && s.logger != nil {
		s.logger.Error("record access denial", slog.Any("error", err))
	}
}

// Timeline returns one page of denials with paging info.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize
	rows, err := s.repo.Window(ctx, filters, offset, pageSize+1)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	return Result{
		Rows:   rows,
		Paging: PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext},
	}, nil
}

var _ authz.DenialRecorder = (*Service)(nil)
