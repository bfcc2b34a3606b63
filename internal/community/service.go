package community

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
)

// Backend is the part of the backend client the community service needs
type Backend interface {
	GetAdminCommunities(ctx context.Context) ([]domain.Community, error)
	UpdateCommunity(ctx context.Context, communityID int64, req domain.UpdateCommunityRequest) error
	UpdateAdvertisementDistribution(ctx context.Context, communityID int64, dist domain.AdvertisementDistribution) error
	CreateCommunity(ctx context.Context, req domain.CreateCommunityRequest) error
	FetchExistedLocationRanges(ctx context.Context, location string) ([]domain.ExistedRange, error)
}

// Service loads and saves communities managed by the signed-in admin
type Service struct {
	backend Backend
	log     *slog.Logger
}

// NewService creates a community service
func NewService(backend Backend, log *slog.Logger) *Service {
	return &Service{backend: backend, log: log}
}

// List returns the communities managed by the admin
func (s *Service) List(ctx context.Context) ([]domain.Community, error) {
	communities, err := s.backend.GetAdminCommunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get communities: %w", err)
	}
	return communities, nil
}

// Get returns one managed community
func (s *Service) Get(ctx context.Context, communityID int64) (domain.Community, error) {
	communities, err := s.List(ctx)
	if err != nil {
		return domain.Community{}, err
	}
	for _, c := range communities {
		if c.CommunityID == communityID {
			return c, nil
		}
	}
	return domain.Community{}, apperrors.NewNotFoundError(fmt.Sprintf("community %d", communityID))
}

// LoadForms seeds both update forms from the stored community
func (s *Service) LoadForms(ctx context.Context, communityID int64) (*SettingsForm, *AdDistributionForm, error) {
	c, err := s.Get(ctx, communityID)
	if err != nil {
		return nil, nil, err
	}
	return NewSettingsForm(c), NewAdDistributionForm(c), nil
}

// SaveSettings submits the settings form and resets its baseline on success
func (s *Service) SaveSettings(ctx context.Context, f *SettingsForm) error {
	req, err := f.Request()
	if err != nil {
		return err
	}
	if err := s.backend.UpdateCommunity(ctx, f.CommunityID, req); err != nil {
		return fmt.Errorf("failed to update community %d: %w", f.CommunityID, err)
	}
	f.MarkSaved()
	s.log.Info("community updated", "community", f.CommunityID,
		"max_participation", req.MaxParticipation,
		"member_share", req.MemberSharePercentage,
		"community_reward", req.CommunityPercentage)
	return nil
}

// SaveAdDistribution submits the ad distribution form and resets its baseline on success
func (s *Service) SaveAdDistribution(ctx context.Context, f *AdDistributionForm) error {
	dist, err := f.Request()
	if err != nil {
		return err
	}
	if err := s.backend.UpdateAdvertisementDistribution(ctx, f.CommunityID, dist); err != nil {
		return fmt.Errorf("failed to update advertisement distribution of community %d: %w", f.CommunityID, err)
	}
	f.MarkSaved()
	s.log.Info("advertisement distribution updated", "community", f.CommunityID,
		"user_share", dist.UserPercentage, "community_share", dist.CommunityPercentage)
	return nil
}

// SelectLocation fetches the ranges taken at location and selects it in the wizard
func (s *Service) SelectLocation(ctx context.Context, w *CreateWizard, location string) error {
	if _, ok := FindLocation(location); !ok {
		return apperrors.NewValidationError(fmt.Sprintf("unknown location %q", location), ErrUnknownLocation)
	}
	taken, err := s.backend.FetchExistedLocationRanges(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to fetch location ranges: %w", err)
	}
	return w.SelectLocation(location, taken)
}

// Create submits the wizard
func (s *Service) Create(ctx context.Context, w *CreateWizard) (domain.CreateCommunityRequest, error) {
	req, err := w.BuildRequest()
	if err != nil {
		return req, err
	}
	if err := s.backend.CreateCommunity(ctx, req); err != nil {
		return req, fmt.Errorf("failed to create community: %w", err)
	}
	s.log.Info("community created", "name", req.Name, "location", req.Location)
	return req, nil
}
