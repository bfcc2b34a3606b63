package community

import (
	"strconv"
	"strings"

	"github.com/kurihiro0119/community-console/internal/allocator"
	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
)

// Settings are the editable values of the community settings form
type Settings struct {
	MaxParticipation int            `json:"maxParticipation"`
	MemberShare      allocator.Pair `json:"memberShare"`
	RewardShare      allocator.Pair `json:"rewardShare"`
}

// SettingsForm edits max participation, the member / management share and the
// reward community / task participant share of an existing community
type SettingsForm struct {
	CommunityID int64

	maxParticipation int
	maxEmpty         bool
	member           *allocator.LinkedPair
	reward           *allocator.LinkedPair
	baseline         *allocator.Baseline[Settings]
}

// NewSettingsForm seeds the form from the stored record; missing values start at 0
func NewSettingsForm(c domain.Community) *SettingsForm {
	s := Settings{
		MaxParticipation: c.MaxParticipation,
		MemberShare:      allocator.NewPair(c.MemberSharePercentage, c.ManagementSharePercentage),
	}
	if c.RewardDistribution != nil {
		s.RewardShare = allocator.NewPair(c.RewardDistribution.CommunityPercentage, c.RewardDistribution.TaskParticipantPercentage)
	}
	return &SettingsForm{
		CommunityID:      c.CommunityID,
		maxParticipation: s.MaxParticipation,
		member:           allocator.NewLinkedPair(s.MemberShare, allocator.RejectEmpty),
		reward:           allocator.NewLinkedPair(s.RewardShare, allocator.RejectEmpty),
		baseline:         allocator.NewBaseline(s),
	}
}

// SetMaxParticipation applies raw input to the max participation field
func (f *SettingsForm) SetMaxParticipation(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		f.maxEmpty = true
		return allocator.ErrEmptyValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return allocator.ErrInvalidNumber
	}
	f.maxEmpty = false
	f.maxParticipation = v
	return nil
}

// SetMemberShare edits the member (primary) / management (secondary) pair
func (f *SettingsForm) SetMemberShare(side allocator.Side, raw string) (allocator.Pair, error) {
	return f.member.SetValue(side, raw)
}

// SetRewardShare edits the community (primary) / task participant (secondary) pair
func (f *SettingsForm) SetRewardShare(side allocator.Side, raw string) (allocator.Pair, error) {
	return f.reward.SetValue(side, raw)
}

// Values returns the current form values
func (f *SettingsForm) Values() Settings {
	return Settings{
		MaxParticipation: f.maxParticipation,
		MemberShare:      f.member.Pair(),
		RewardShare:      f.reward.Pair(),
	}
}

// Dirty reports whether the values differ from the last saved ones
func (f *SettingsForm) Dirty() bool {
	return f.baseline.Changed(f.Values())
}

// Valid reports whether no field is cleared and max participation is in range
func (f *SettingsForm) Valid() bool {
	return !f.maxEmpty && f.member.Committable() && f.reward.Committable() &&
		f.maxParticipation > 0 && f.maxParticipation <= MaxParticipationAllowed
}

// CanSave is the commit gate of the form
func (f *SettingsForm) CanSave() bool {
	return f.Dirty() && f.Valid()
}

// Request builds the update request, or fails when the form cannot be saved
func (f *SettingsForm) Request() (domain.UpdateCommunityRequest, error) {
	if err := gate(f.Dirty(), f.Valid()); err != nil {
		return domain.UpdateCommunityRequest{}, err
	}
	v := f.Values()
	return domain.UpdateCommunityRequest{
		MaxParticipation:          v.MaxParticipation,
		MemberSharePercentage:     v.MemberShare.Primary,
		ManagementSharePercentage: v.MemberShare.Secondary,
		CommunityPercentage:       v.RewardShare.Primary,
		TaskParticipantPercentage: v.RewardShare.Secondary,
	}, nil
}

// MarkSaved makes the current values the new baseline
func (f *SettingsForm) MarkSaved() {
	f.baseline.MarkSaved(f.Values())
}

// AdDistributionForm edits the user (primary) / community (secondary) split of ad revenue
type AdDistributionForm struct {
	CommunityID int64

	share    *allocator.LinkedPair
	baseline *allocator.Baseline[allocator.Pair]
}

// NewAdDistributionForm seeds the form from the stored record; missing values start at 0
func NewAdDistributionForm(c domain.Community) *AdDistributionForm {
	var p allocator.Pair
	if c.AdvertisementDistribution != nil {
		p = allocator.NewPair(c.AdvertisementDistribution.UserPercentage, c.AdvertisementDistribution.CommunityPercentage)
	}
	return &AdDistributionForm{
		CommunityID: c.CommunityID,
		share:       allocator.NewLinkedPair(p, allocator.RejectEmpty),
		baseline:    allocator.NewBaseline(p),
	}
}

// SetShare edits one side of the split
func (f *AdDistributionForm) SetShare(side allocator.Side, raw string) (allocator.Pair, error) {
	return f.share.SetValue(side, raw)
}

// Values returns the current split
func (f *AdDistributionForm) Values() allocator.Pair {
	return f.share.Pair()
}

// Dirty reports whether the split differs from the last saved one
func (f *AdDistributionForm) Dirty() bool {
	return f.baseline.Changed(f.share.Pair())
}

// Valid reports whether no field is cleared
func (f *AdDistributionForm) Valid() bool {
	return f.share.Committable()
}

// CanSave is the commit gate of the form
func (f *AdDistributionForm) CanSave() bool {
	return f.Dirty() && f.Valid()
}

// Request builds the update body, or fails when the form cannot be saved
func (f *AdDistributionForm) Request() (domain.AdvertisementDistribution, error) {
	if err := gate(f.Dirty(), f.Valid()); err != nil {
		return domain.AdvertisementDistribution{}, err
	}
	p := f.share.Pair()
	return domain.AdvertisementDistribution{UserPercentage: p.Primary, CommunityPercentage: p.Secondary}, nil
}

// MarkSaved makes the current split the new baseline
func (f *AdDistributionForm) MarkSaved() {
	f.baseline.MarkSaved(f.share.Pair())
}

func gate(dirty, valid bool) error {
	switch {
	case !valid:
		return apperrors.NewValidationError("form has empty or out of range fields", ErrIncomplete)
	case !dirty:
		return apperrors.NewValidationError("nothing changed", nil)
	}
	return nil
}
