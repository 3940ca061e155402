package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

type ProfileService struct {
	profileRepo ports.ProfileRepository
	images      ports.ProfileImageStore
	logger      *zap.Logger
}

var _ ports.ProfileService = (*ProfileService)(nil)

func NewProfileService(
	profileRepo ports.ProfileRepository,
	images ports.ProfileImageStore,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		images:      images,
		logger:      logger,
	}
}

// GetOrCreateProfile returns the caller's profile, creating it on first login.
// The role is only used when the profile does not exist yet.
// The boolean result reports whether a profile was created.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, id domain.Identity, role string) (*domain.Profile, bool, error) {
	if id.ID == "" {
		return nil, false, domain.ErrUnauthenticated
	}

	existing, err := s.profileRepo.FindProfileByID(ctx, id.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("find profile: %w", err)
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, false, domain.NewValidationError("role", "must be one of: parent, provider")
	}

	created, err := s.profileRepo.CreateProfile(ctx, domain.Profile{
		ID:          id.ID,
		Name:        domain.DisplayNameFromEmail(id.Email),
		Email:       id.Email,
		Role:        parsed,
		Specialties: []string{},
	})
	if err != nil {
		return nil, false, fmt.Errorf("create profile: %w", err)
	}

	s.logger.Info("profile created",
		zap.String("user_id", created.ID),
		zap.String("role", string(created.Role)),
	)
	return created, true, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, actor domain.Actor) (*domain.Profile, error) {
	return s.profileRepo.FindProfileByID(ctx, actor.ID)
}

// GetPublicProfile returns a provider's profile. Parent profiles are not public.
func (s *ProfileService) GetPublicProfile(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.profileRepo.FindProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != domain.RoleProvider {
		return nil, domain.ErrNotFound
	}
	p.Email = ""
	p.Phone = ""
	return p, nil
}

// UpdateProfile replaces the caller's editable profile fields. Role, verified flag
// and image are not caller-editable here.
func (s *ProfileService) UpdateProfile(ctx context.Context, actor domain.Actor, fields domain.ProfileFields) (*domain.Profile, error) {
	fields.Name = strings.TrimSpace(fields.Name)
	if err := validateStruct(fields); err != nil {
		return nil, err
	}
	if fields.Specialties == nil {
		fields.Specialties = []string{}
	}

	p := domain.Profile{
		ID:               actor.ID,
		Email:            actor.Email,
		Role:             actor.Role,
		Name:             fields.Name,
		OrganizationName: fields.OrganizationName,
		Bio:              fields.Bio,
		Location:         fields.Location,
		Website:          fields.Website,
		Phone:            fields.Phone,
		Specialties:      fields.Specialties,
		Social:           fields.Social,
	}

	updated, err := s.profileRepo.UpsertProfile(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return updated, nil
}

func (s *ProfileService) UploadProfileImage(ctx context.Context, actor domain.Actor, data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.NewValidationError("image", "is required")
	}

	url, err := s.images.StoreProfileImage(ctx, actor.ID, data)
	if err != nil {
		return "", err
	}

	if err := s.profileRepo.UpdateProfileImage(ctx, actor.ID, url); err != nil {
		return "", fmt.Errorf("update profile image: %w", err)
	}

	s.logger.Info("profile image updated", zap.String("user_id", actor.ID))
	return url, nil
}

func (s *ProfileService) ResolveActor(ctx context.Context, id domain.Identity) (domain.Actor, error) {
	p, err := s.profileRepo.FindProfileByID(ctx, id.ID)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.Actor{ID: p.ID, Email: id.Email, Role: p.Role}, nil
}
