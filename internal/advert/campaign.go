package advert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kurihiro0119/community-console/internal/batch"
	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
)

// Backend is the part of the backend client a campaign needs
type Backend interface {
	GetAllCommunities(ctx context.Context) ([]domain.Community, error)
	GetUserWallet(ctx context.Context) (domain.Wallet, error)
	CreateAdvertisement(ctx context.Context, req domain.CreateAdvertisementRequest) error
}

// Campaign submits one advertisement per selected community through the batch tracker
type Campaign struct {
	backend Backend
	tracker *batch.Tracker
	log     *slog.Logger
}

// NewCampaign creates a campaign
func NewCampaign(backend Backend, tracker *batch.Tracker, log *slog.Logger) *Campaign {
	return &Campaign{backend: backend, tracker: tracker, log: log}
}

// Quote prices durationDays over the selected communities against the current wallet balance
func (c *Campaign) Quote(ctx context.Context, durationDays int, communityIDs []int64) (Quote, error) {
	if durationDays < MinDurationDays || durationDays > MaxDurationDays {
		return Quote{}, apperrors.NewValidationError(
			fmt.Sprintf("upload duration must be between %d and %d days", MinDurationDays, MaxDurationDays), nil)
	}
	selected, err := c.selectCommunities(ctx, communityIDs)
	if err != nil {
		return Quote{}, err
	}
	wallet, err := c.backend.GetUserWallet(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to get wallet: %w", err)
	}
	return NewQuote(durationDays, selected, wallet.Balance), nil
}

// Submit validates the draft, checks the balance and creates the advertisement in every
// selected community, in selection order. A failed community does not stop the others.
func (c *Campaign) Submit(ctx context.Context, draft Draft, communityIDs []int64) (*domain.BatchRun, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	quote, err := c.Quote(ctx, draft.UploadDuration, communityIDs)
	if err != nil {
		return nil, err
	}
	return c.SubmitQuote(ctx, draft, quote)
}

// SubmitQuote is Submit for a quote the caller already fetched and showed.
// The quote is enforced as is; nothing is fetched again.
func (c *Campaign) SubmitQuote(ctx context.Context, draft Draft, quote Quote) (*domain.BatchRun, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if quote.DurationDays != draft.UploadDuration {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("quote covers %d days but the draft runs %d", quote.DurationDays, draft.UploadDuration), nil)
	}
	if len(quote.Lines) == 0 {
		return nil, apperrors.NewValidationError("select at least one community", nil)
	}
	if err := quote.CheckBalance(); err != nil {
		return nil, err
	}

	targets := make([]domain.SubmissionTarget, len(quote.Lines))
	for i, line := range quote.Lines {
		targets[i] = domain.SubmissionTarget{
			TargetID:     line.CommunityID,
			DisplayName:  line.Name,
			TotalMembers: line.TotalMembers,
		}
	}

	c.log.Info("submitting advertisement", "title", draft.Title, "communities", len(targets), "total_fee", quote.TotalFee)
	return c.tracker.Run(ctx, domain.BatchKindAdvertisement, targets, func(ctx context.Context, target domain.SubmissionTarget) error {
		return c.backend.CreateAdvertisement(ctx, draft.Request(target.TargetID, target.TotalMembers))
	})
}

// selectCommunities resolves ids against the visible communities, keeping the given order
func (c *Campaign) selectCommunities(ctx context.Context, ids []int64) ([]domain.Community, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("select at least one community", nil)
	}
	all, err := c.backend.GetAllCommunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get communities: %w", err)
	}
	byID := make(map[int64]domain.Community, len(all))
	for _, community := range all {
		byID[community.CommunityID] = community
	}

	selected := make([]domain.Community, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		community, ok := byID[id]
		if !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("community %d", id))
		}
		selected = append(selected, community)
	}
	return selected, nil
}
