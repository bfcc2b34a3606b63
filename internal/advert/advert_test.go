package advert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/community-console/internal/batch"
	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
	"github.com/kurihiro0119/community-console/internal/logger"
)

func validDraft() Draft {
	return Draft{
		Title:          "Clean river day",
		Description:    "Join us to clean up the river bank this weekend.",
		Type:           domain.AdTypeNonProfit,
		UploadDuration: 7,
		MediaURL:       "https://cdn.example.com/ads/river.png",
		AgreeTerms:     true,
	}
}

func TestDraft_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(d *Draft)
		wantMsg string
	}{
		{name: "valid", mutate: func(d *Draft) {}},
		{name: "short title", mutate: func(d *Draft) { d.Title = "ab" }, wantMsg: "title must be at least 3 characters"},
		{name: "short description", mutate: func(d *Draft) { d.Description = "too short" }, wantMsg: "description must be at least 10 characters"},
		{name: "unknown type", mutate: func(d *Draft) { d.Type = "Charity" }, wantMsg: "type must be"},
		{name: "profit type", mutate: func(d *Draft) { d.Type = domain.AdTypeProfit }},
		{name: "zero duration", mutate: func(d *Draft) { d.UploadDuration = 0 }, wantMsg: "between 1 and 30 days"},
		{name: "long duration", mutate: func(d *Draft) { d.UploadDuration = 31 }, wantMsg: "between 1 and 30 days"},
		{name: "max duration", mutate: func(d *Draft) { d.UploadDuration = 30 }},
		{name: "no media", mutate: func(d *Draft) { d.MediaURL = "" }, wantMsg: "media URL is required"},
		{name: "terms not agreed", mutate: func(d *Draft) { d.AgreeTerms = false }, wantMsg: "agree to the terms"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := validDraft()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.True(t, apperrors.IsValidation(err))
			require.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestDraft_ValidateListsEveryProblem(t *testing.T) {
	t.Parallel()
	err := Draft{}.Validate()
	require.Error(t, err)
	for _, want := range []string{"title", "description", "type", "upload duration", "media URL", "terms"} {
		require.ErrorContains(t, err, want)
	}
}

func TestFees(t *testing.T) {
	t.Parallel()
	require.InDelta(t, 2.5, BasicFee(25), 1e-9)
	require.InDelta(t, 17.5, Fee(7, 25), 1e-9)
	require.InDelta(t, 0, Fee(30, 0), 1e-9)
}

func TestNewQuote(t *testing.T) {
	t.Parallel()
	communities := []domain.Community{
		{CommunityID: 3, Name: "Elmina", TotalMembers: 40},
		{CommunityID: 1, Name: "Bukit Jalil", TotalMembers: 10},
	}

	q := NewQuote(5, communities, 25)
	require.Len(t, q.Lines, 2)
	require.Equal(t, int64(3), q.Lines[0].CommunityID)
	require.InDelta(t, 20, q.Lines[0].Fee, 1e-9)
	require.InDelta(t, 5, q.Lines[1].Fee, 1e-9)
	require.InDelta(t, 5, q.BasicFee, 1e-9)
	require.InDelta(t, 25, q.TotalFee, 1e-9)
	require.True(t, q.Sufficient)
	require.NoError(t, q.CheckBalance())

	q = NewQuote(6, communities, 25)
	require.False(t, q.Sufficient)
	require.True(t, apperrors.IsInsufficientFunds(q.CheckBalance()))
}

type fakeBackend struct {
	communities []domain.Community
	balance     float64
	fail        map[int64]error
	created     []domain.CreateAdvertisementRequest
	walletCalls int
}

func (f *fakeBackend) GetAllCommunities(context.Context) ([]domain.Community, error) {
	return f.communities, nil
}

func (f *fakeBackend) GetUserWallet(context.Context) (domain.Wallet, error) {
	f.walletCalls++
	return domain.Wallet{Balance: f.balance}, nil
}

func (f *fakeBackend) CreateAdvertisement(_ context.Context, req domain.CreateAdvertisementRequest) error {
	f.created = append(f.created, req)
	return f.fail[req.CommunityID]
}

func newCampaign(t *testing.T, backend Backend) *Campaign {
	t.Helper()
	tracker, err := batch.NewTracker(batch.TrackerConfig{Logger: logger.Discard()})
	require.NoError(t, err)
	return NewCampaign(backend, tracker, logger.Discard())
}

func TestCampaign_SubmitPerCommunityInOrder(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{
		communities: []domain.Community{
			{CommunityID: 1, Name: "A", TotalMembers: 10},
			{CommunityID: 2, Name: "B", TotalMembers: 20},
			{CommunityID: 3, Name: "C", TotalMembers: 30},
		},
		balance: 1000,
		fail:    map[int64]error{2: errors.New("connection reset by peer")},
	}

	run, err := newCampaign(t, backend).Submit(context.Background(), validDraft(), []int64{3, 2, 1})
	require.NoError(t, err)

	require.Len(t, backend.created, 3)
	require.Equal(t, []int64{3, 2, 1}, []int64{backend.created[0].CommunityID, backend.created[1].CommunityID, backend.created[2].CommunityID})
	require.InDelta(t, 21, backend.created[0].Fee, 1e-9)
	require.Equal(t, []domain.Media{{MediaURL: "https://cdn.example.com/ads/river.png"}}, backend.created[0].MediaList)

	require.False(t, run.IsRunning)
	require.Equal(t, domain.TargetSucceeded, run.Targets[0].Status)
	require.Equal(t, domain.TargetFailed, run.Targets[1].Status)
	require.Equal(t, "connection reset by peer", run.Targets[1].Message)
	require.Equal(t, domain.TargetSucceeded, run.Targets[2].Status)
}

func TestCampaign_SubmitRejectsBeforeAnyCall(t *testing.T) {
	t.Parallel()
	communities := []domain.Community{{CommunityID: 1, Name: "A", TotalMembers: 100}}

	tests := []struct {
		name    string
		balance float64
		draft   Draft
		ids     []int64
		check   func(error) bool
	}{
		{name: "insufficient funds", balance: 69, draft: validDraft(), ids: []int64{1}, check: apperrors.IsInsufficientFunds},
		{name: "invalid draft", balance: 1000, draft: Draft{}, ids: []int64{1}, check: apperrors.IsValidation},
		{name: "empty selection", balance: 1000, draft: validDraft(), ids: nil, check: apperrors.IsValidation},
		{name: "unknown community", balance: 1000, draft: validDraft(), ids: []int64{9}, check: apperrors.IsNotFound},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend := &fakeBackend{communities: communities, balance: tt.balance}
			run, err := newCampaign(t, backend).Submit(context.Background(), tt.draft, tt.ids)
			require.Nil(t, run)
			require.True(t, tt.check(err), "unexpected error: %v", err)
			require.Empty(t, backend.created)
		})
	}
}

func TestCampaign_QuoteIgnoresDuplicateSelection(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{
		communities: []domain.Community{{CommunityID: 1, Name: "A", TotalMembers: 10}},
		balance:     1,
	}
	q, err := newCampaign(t, backend).Quote(context.Background(), 1, []int64{1, 1})
	require.NoError(t, err)
	require.Len(t, q.Lines, 1)
	require.True(t, q.Sufficient)
}

func TestCampaign_SubmitQuoteUsesShownQuote(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{
		communities: []domain.Community{
			{CommunityID: 1, Name: "A", TotalMembers: 10},
			{CommunityID: 2, Name: "B", TotalMembers: 20},
		},
		balance: 100,
	}
	campaign := newCampaign(t, backend)
	ctx := context.Background()

	draft := validDraft()
	q, err := campaign.Quote(ctx, draft.UploadDuration, []int64{2, 1})
	require.NoError(t, err)
	require.Equal(t, 1, backend.walletCalls)

	// a later balance change does not alter the enforced quote
	backend.balance = 0
	run, err := campaign.SubmitQuote(ctx, draft, q)
	require.NoError(t, err)
	require.Equal(t, 1, backend.walletCalls)
	require.Equal(t, "completed", run.Outcome())
	require.Equal(t, []int64{2, 1}, []int64{backend.created[0].CommunityID, backend.created[1].CommunityID})

	draft.UploadDuration++
	_, err = campaign.SubmitQuote(ctx, draft, q)
	require.True(t, apperrors.IsValidation(err))

	_, err = campaign.SubmitQuote(ctx, validDraft(), Quote{DurationDays: validDraft().UploadDuration, Sufficient: true})
	require.True(t, apperrors.IsValidation(err))
	require.Len(t, backend.created, 2)
}
