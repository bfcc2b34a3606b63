// Package community holds the community create wizard, the update forms and
// the service that loads and saves them through the backend.
package community

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kurihiro0119/community-console/internal/allocator"
	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
)

var (
	ErrUnknownLocation  = errors.New("unknown location")
	ErrUnknownArea      = errors.New("unknown area")
	ErrAreaUnavailable  = errors.New("area overlaps with an existing community")
	ErrIncomplete       = errors.New("fill in all fields correctly before proceeding")
	ErrTermsNotAccepted = errors.New("agree to the terms and conditions before creating the community")
)

// Default values of a new community
const (
	DefaultMaxParticipation = allocator.ParticipationMax
	DefaultMemberShare      = 70.0
	DefaultRewardCommunity  = 60.0
	MaxParticipationAllowed = 300
	createAdminID           = 0
)

// Step is a page of the create wizard
type Step int

const (
	StepLocation Step = iota + 1
	StepDetails
	StepSummary
)

// CreateWizard is the state of the community create flow.
// MemberShare is member (primary) / management (secondary);
// RewardShare is community (primary) / task participant (secondary).
type CreateWizard struct {
	Participation *allocator.Stepper
	MemberShare   *allocator.LinkedPair
	RewardShare   *allocator.LinkedPair

	baseName string
	location *Location
	area     string
	taken    []domain.ExistedRange
	step     Step
	agreed   bool
}

// NewCreateWizard starts a wizard with the default values
func NewCreateWizard() *CreateWizard {
	return &CreateWizard{
		Participation: allocator.NewParticipation(DefaultMaxParticipation),
		MemberShare:   allocator.NewLinkedPair(allocator.NewPair(DefaultMemberShare, allocator.Total-DefaultMemberShare), allocator.ClampEmpty),
		RewardShare:   allocator.NewLinkedPair(allocator.NewPair(DefaultRewardCommunity, allocator.Total-DefaultRewardCommunity), allocator.ClampEmpty),
		step:          StepLocation,
	}
}

// Step returns the current page
func (w *CreateWizard) Step() Step {
	return w.step
}

// SetName sets the base name; a selected location and area are appended by Name
func (w *CreateWizard) SetName(name string) {
	w.baseName = BaseName(name)
}

// Name is the community name as it will be stored
func (w *CreateWizard) Name() string {
	if w.location == nil || w.area == "" {
		return w.baseName
	}
	return ComposeName(w.baseName, w.location.Name, w.area)
}

// Location returns the selected location, if any
func (w *CreateWizard) Location() (Location, bool) {
	if w.location == nil {
		return Location{}, false
	}
	return *w.location, true
}

// Area returns the selected area name, or ""
func (w *CreateWizard) Area() string {
	return w.area
}

// SelectLocation picks a location with the ranges already taken in it and clears the area
func (w *CreateWizard) SelectLocation(name string, taken []domain.ExistedRange) error {
	loc, ok := FindLocation(name)
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("unknown location %q", name), ErrUnknownLocation)
	}
	w.location = &loc
	w.area = ""
	w.taken = taken
	return nil
}

// AvailableAreas lists the areas of the selected location that overlap no existing community
func (w *CreateWizard) AvailableAreas() []Area {
	if w.location == nil {
		return nil
	}
	var out []Area
	for _, a := range w.location.Areas {
		if a.Available(w.taken) {
			out = append(out, a)
		}
	}
	return out
}

// SelectArea picks an area of the selected location. Overlapping areas are refused
// and leave the previous selection in place.
func (w *CreateWizard) SelectArea(name string) error {
	if w.location == nil {
		return apperrors.NewValidationError("select a location first", ErrUnknownLocation)
	}
	area, ok := w.location.Area(name)
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("unknown area %q", name), ErrUnknownArea)
	}
	if !area.Available(w.taken) {
		return apperrors.NewValidationError(fmt.Sprintf("area %s is unavailable", name), ErrAreaUnavailable)
	}
	w.area = area.Name
	return nil
}

// Next moves from the location page to the details page
func (w *CreateWizard) Next() error {
	if w.step != StepLocation {
		return nil
	}
	if strings.TrimSpace(w.baseName) == "" || w.location == nil || w.area == "" {
		return apperrors.NewValidationError("name, location and area are required", ErrIncomplete)
	}
	w.step = StepDetails
	return nil
}

// Back returns to the previous page
func (w *CreateWizard) Back() {
	if w.step > StepLocation {
		w.step--
	}
}

// ShowSummary checks the details and moves to the summary page.
// Cleared share fields are committed as 0 first.
func (w *CreateWizard) ShowSummary() error {
	for _, side := range []allocator.Side{allocator.Primary, allocator.Secondary} {
		w.MemberShare.Blur(side)
		w.RewardShare.Blur(side)
	}
	limit := w.Participation.Value()
	if strings.TrimSpace(w.baseName) == "" || w.location == nil || w.area == "" ||
		limit <= 0 || limit > MaxParticipationAllowed {
		return apperrors.NewValidationError("name, location, area and a max participation up to 300 are required", ErrIncomplete)
	}
	w.step = StepSummary
	return nil
}

// AgreeToTerms records the terms checkbox
func (w *CreateWizard) AgreeToTerms(agreed bool) {
	w.agreed = agreed
}

// BuildRequest returns the create request once the summary was reached and the terms accepted
func (w *CreateWizard) BuildRequest() (domain.CreateCommunityRequest, error) {
	if w.step != StepSummary {
		return domain.CreateCommunityRequest{}, apperrors.NewValidationError("review the summary before creating", ErrIncomplete)
	}
	if !w.agreed {
		return domain.CreateCommunityRequest{}, apperrors.NewValidationError("terms not accepted", ErrTermsNotAccepted)
	}
	area, ok := w.location.Area(w.area)
	if !ok {
		return domain.CreateCommunityRequest{}, apperrors.NewValidationError("selected area not found", ErrUnknownArea)
	}

	member := w.MemberShare.Pair()
	reward := w.RewardShare.Pair()
	return domain.CreateCommunityRequest{
		Name:                      w.Name(),
		Location:                  w.location.Name,
		StartX:                    area.X,
		StartY:                    area.Y,
		Width:                     area.Width,
		Height:                    area.Height,
		MaxParticipation:          w.Participation.Value(),
		MemberSharePercentage:     member.Primary,
		ManagementSharePercentage: member.Secondary,
		AdminID:                   createAdminID,
		CommunityPercentage:       reward.Primary,
		TaskParticipantPercentage: reward.Secondary,
	}, nil
}
