package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/repository"
)

// CompanyService exposes the read-only company directory derived from
// question data.
type CompanyService struct {
	questions repository.QuestionRepository
	logger    *slog.Logger
}

func NewCompanyService(questions repository.QuestionRepository, logger *slog.Logger) *CompanyService {
	return &CompanyService{questions: questions, logger: logger}
}

// List aggregates companies from the question corpus, optionally filtered
// by a case-insensitive substring match on the name. The result is always
// a non-nil slice so an empty directory serializes as [].
func (s *CompanyService) List(ctx context.Context, search string) ([]model.Company, error) {
	companies, err := s.questions.AggregateCompanies(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("aggregating companies: %w", err)
	}
	if companies == nil {
		companies = []model.Company{}
	}
	return companies, nil
}
