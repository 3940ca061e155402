package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

const DefaultFeaturedLimit = 3

type CatalogService struct {
	programRepo   ports.ProgramRepository
	featuredLimit int
	logger        *zap.Logger
	now           func() time.Time
}

var _ ports.CatalogService = (*CatalogService)(nil)

func NewCatalogService(programRepo ports.ProgramRepository, featuredLimit int, logger *zap.Logger) *CatalogService {
	if featuredLimit <= 0 {
		featuredLimit = DefaultFeaturedLimit
	}
	return &CatalogService{
		programRepo:   programRepo,
		featuredLimit: featuredLimit,
		logger:        logger,
		now:           time.Now,
	}
}

// ListPrograms fetches the whole catalog and filters it in memory, keeping fetch order.
// A featured-only listing is capped at the featured limit; when nothing featured
// matches, the most recently created matching programs are returned instead.
func (s *CatalogService) ListPrograms(ctx context.Context, filter domain.ProgramFilter) ([]domain.Program, error) {
	all, err := s.programRepo.ListPrograms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}

	featuredOnly := filter.FeaturedOnly
	filter.FeaturedOnly = false

	matched := make([]domain.Program, 0, len(all))
	for _, p := range all {
		if filter.Matches(p) {
			matched = append(matched, p)
		}
	}

	if !featuredOnly {
		return matched, nil
	}

	featured := make([]domain.Program, 0, s.featuredLimit)
	for _, p := range matched {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	if len(featured) > 0 {
		return capPrograms(featured, s.featuredLimit), nil
	}

	recent := make([]domain.Program, len(matched))
	copy(recent, matched)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	return capPrograms(recent, s.featuredLimit), nil
}

func capPrograms(ps []domain.Program, limit int) []domain.Program {
	if len(ps) > limit {
		return ps[:limit]
	}
	return ps
}

func (s *CatalogService) GetProgram(ctx context.Context, id string) (*domain.Program, error) {
	return s.programRepo.FindProgramByID(ctx, id)
}

func (s *CatalogService) ListProgramsForProvider(ctx context.Context, actor domain.Actor) ([]domain.Program, error) {
	if actor.Role != domain.RoleProvider {
		return nil, domain.ErrForbidden
	}
	return s.programRepo.ListProgramsByProvider(ctx, actor.ID)
}

func (s *CatalogService) CreateProgram(ctx context.Context, actor domain.Actor, fields domain.ProgramFields) (*domain.Program, error) {
	if actor.Role != domain.RoleProvider {
		return nil, domain.ErrForbidden
	}
	if err := validateStruct(fields); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := domain.Program{
		ID:         uuid.NewString(),
		ProviderID: actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	fields.Apply(&p)

	if err := s.programRepo.CreateProgram(ctx, p); err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	s.logger.Info("program created",
		zap.String("program_id", p.ID),
		zap.String("provider_id", p.ProviderID),
	)
	return &p, nil
}

// UpdateProgram replaces the editable fields of a program owned by the caller.
func (s *CatalogService) UpdateProgram(ctx context.Context, actor domain.Actor, programID string, fields domain.ProgramFields) (*domain.Program, error) {
	existing, err := s.ownedProgram(ctx, actor, programID)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(fields); err != nil {
		return nil, err
	}

	updated := *existing
	fields.Apply(&updated)
	updated.UpdatedAt = s.now().UTC()

	if err := s.programRepo.UpdateProgram(ctx, updated); err != nil {
		return nil, fmt.Errorf("update program: %w", err)
	}
	return &updated, nil
}

func (s *CatalogService) DeleteProgram(ctx context.Context, actor domain.Actor, programID string) error {
	if _, err := s.ownedProgram(ctx, actor, programID); err != nil {
		return err
	}
	if err := s.programRepo.DeleteProgram(ctx, programID, actor.ID); err != nil {
		return fmt.Errorf("delete program: %w", err)
	}

	s.logger.Info("program deleted",
		zap.String("program_id", programID),
		zap.String("provider_id", actor.ID),
	)
	return nil
}

func (s *CatalogService) ownedProgram(ctx context.Context, actor domain.Actor, programID string) (*domain.Program, error) {
	p, err := s.programRepo.FindProgramByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if p.ProviderID != actor.ID {
		s.logger.Warn("program ownership check failed",
			zap.String("program_id", programID),
			zap.String("actor_id", actor.ID),
		)
		return nil, domain.ErrForbidden
	}
	return p, nil
}
