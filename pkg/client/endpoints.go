package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kurihiro0119/community-console/internal/domain"
)

// Empty is the data type of calls that return no payload
type Empty struct{}

// GetAdminCommunities lists the communities managed by the signed-in admin
func (c *Client) GetAdminCommunities(ctx context.Context) ([]domain.Community, error) {
	res, err := Call[[]domain.Community](ctx, c, http.MethodGet, "/admin-community/get-communities", nil, nil)
	if err != nil {
		return nil, err
	}
	return res.Value()
}

// UpdateCommunity saves max participation and the member and reward splits
func (c *Client) UpdateCommunity(ctx context.Context, communityID int64, req domain.UpdateCommunityRequest) error {
	res, err := Call[Empty](ctx, c, http.MethodPut, "/admin-community/update-community", idQuery("communityId", communityID), req)
	if err != nil {
		return err
	}
	return res.Err()
}

// UpdateAdvertisementDistribution saves the user / community advertisement split
func (c *Client) UpdateAdvertisementDistribution(ctx context.Context, communityID int64, dist domain.AdvertisementDistribution) error {
	res, err := Call[Empty](ctx, c, http.MethodPut, "/admin-community/update-advertisement-distribution", idQuery("communityId", communityID), dist)
	if err != nil {
		return err
	}
	return res.Err()
}

// CreateCommunity creates a community
func (c *Client) CreateCommunity(ctx context.Context, req domain.CreateCommunityRequest) error {
	res, err := Call[Empty](ctx, c, http.MethodPost, "/admin-community/create-community", nil, req)
	if err != nil {
		return err
	}
	return res.Err()
}

// FetchExistedLocationRanges lists the map rectangles already taken at location
func (c *Client) FetchExistedLocationRanges(ctx context.Context, location string) ([]domain.ExistedRange, error) {
	q := url.Values{}
	q.Set("location", location)
	res, err := Call[[]domain.ExistedRange](ctx, c, http.MethodGet, "/admin-community/fetch-existed-location-range", q, nil)
	if err != nil {
		return nil, err
	}
	return res.Value()
}

// GetAllCommunities lists every community visible to the signed-in user
func (c *Client) GetAllCommunities(ctx context.Context) ([]domain.Community, error) {
	res, err := Call[[]domain.Community](ctx, c, http.MethodGet, "/user-community/get-all-communities", nil, nil)
	if err != nil {
		return nil, err
	}
	return res.Value()
}

// GetUserWallet returns the balance of the signed-in user
func (c *Client) GetUserWallet(ctx context.Context) (domain.Wallet, error) {
	res, err := Call[domain.Wallet](ctx, c, http.MethodGet, "/user/wallet", nil, nil)
	if err != nil {
		return domain.Wallet{}, err
	}
	return res.Value()
}

// CreateAdvertisement submits one advertisement for one community
func (c *Client) CreateAdvertisement(ctx context.Context, req domain.CreateAdvertisementRequest) error {
	res, err := Call[Empty](ctx, c, http.MethodPost, "/investor-advertisement/create", nil, req)
	if err != nil {
		return err
	}
	return res.Err()
}

// GetInvestorAds lists the advertisements of the signed-in investor
func (c *Client) GetInvestorAds(ctx context.Context) ([]domain.Advertisement, error) {
	res, err := Call[[]domain.Advertisement](ctx, c, http.MethodGet, "/investor-advertisement/get-my-ads", nil, nil)
	if err != nil {
		return nil, err
	}
	return res.Value()
}
