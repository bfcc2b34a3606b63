// Package advert validates advertisement drafts, prices them per community
// and submits one advertisement per selected community.
package advert

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
)

const (
	MinDurationDays = 1
	MaxDurationDays = 30
)

// Draft is the advertisement as entered by the investor, before it is priced per community
type Draft struct {
	Title          string        `json:"title" validate:"required,min=3"`
	Description    string        `json:"description" validate:"required,min=10"`
	Type           domain.AdType `json:"type" validate:"required,oneof='Non-Profit Ad' 'Profit Ad'"`
	UploadDuration int           `json:"uploadDuration" validate:"min=1,max=30"`
	MediaURL       string        `json:"mediaUrl" validate:"required,url"`
	AgreeTerms     bool          `json:"agreeTerms" validate:"eq=true"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the draft and returns a VALIDATION_FAILED error listing every problem
func (d Draft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInternalError("failed to validate draft", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperrors.NewValidationError(strings.Join(msgs, "; "), err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "title":
		return "title must be at least 3 characters"
	case "description":
		return "description must be at least 10 characters"
	case "type":
		return fmt.Sprintf("type must be %q or %q", domain.AdTypeNonProfit, domain.AdTypeProfit)
	case "uploadDuration":
		return fmt.Sprintf("upload duration must be between %d and %d days", MinDurationDays, MaxDurationDays)
	case "mediaUrl":
		return "an uploaded media URL is required"
	case "agreeTerms":
		return "you must agree to the terms and conditions"
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// Request builds the create request of this draft for one community
func (d Draft) Request(communityID int64, totalMembers int) domain.CreateAdvertisementRequest {
	return domain.CreateAdvertisementRequest{
		CommunityID:    communityID,
		Title:          d.Title,
		Description:    d.Description,
		Type:           d.Type,
		UploadDuration: d.UploadDuration,
		Fee:            Fee(d.UploadDuration, totalMembers),
		MediaList:      []domain.Media{{MediaURL: d.MediaURL}},
	}
}
