package advert

import (
	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
)

// FeeRate is the daily price per community member
const FeeRate = 0.1

// BasicFee is the daily fee of advertising in a community
func BasicFee(totalMembers int) float64 {
	return float64(totalMembers) * FeeRate
}

// Fee is the price of advertising in a community for the given number of days
func Fee(durationDays, totalMembers int) float64 {
	return float64(durationDays) * float64(totalMembers) * FeeRate
}

// QuoteLine is the price of one selected community
type QuoteLine struct {
	CommunityID  int64   `json:"communityId"`
	Name         string  `json:"name"`
	TotalMembers int     `json:"totalMembers"`
	BasicFee     float64 `json:"basicFee"`
	Fee          float64 `json:"fee"`
}

// Quote prices a draft over a selection of communities
type Quote struct {
	DurationDays int         `json:"durationDays"`
	Lines        []QuoteLine `json:"lines"`
	BasicFee     float64     `json:"basicFee"`
	TotalFee     float64     `json:"totalFee"`
	Balance      float64     `json:"balance"`
	Sufficient   bool        `json:"sufficient"`
}

// NewQuote prices durationDays of advertising in every community, in selection order
func NewQuote(durationDays int, communities []domain.Community, balance float64) Quote {
	q := Quote{
		DurationDays: durationDays,
		Lines:        make([]QuoteLine, 0, len(communities)),
		Balance:      balance,
	}
	for _, c := range communities {
		line := QuoteLine{
			CommunityID:  c.CommunityID,
			Name:         c.Name,
			TotalMembers: c.TotalMembers,
			BasicFee:     BasicFee(c.TotalMembers),
			Fee:          Fee(durationDays, c.TotalMembers),
		}
		q.BasicFee += line.BasicFee
		q.TotalFee += line.Fee
		q.Lines = append(q.Lines, line)
	}
	q.Sufficient = q.TotalFee <= balance
	return q
}

// CheckBalance fails when the total fee exceeds the wallet balance
func (q Quote) CheckBalance() error {
	if !q.Sufficient {
		return apperrors.NewInsufficientFundsError(q.TotalFee, q.Balance)
	}
	return nil
}
