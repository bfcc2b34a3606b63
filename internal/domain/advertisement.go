package domain

// AdType is the advertisement category
type AdType string

const (
	AdTypeNonProfit AdType = "Non-Profit Ad"
	AdTypeProfit    AdType = "Profit Ad"
)

// Media is a reference to an already uploaded media object
type Media struct {
	MediaURL string `json:"mediaUrl"`
}

// Advertisement is an advertisement record as served by the backend
type Advertisement struct {
	AdvertisementID int64   `json:"advertisementId"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Type            string  `json:"type"`
	UploadDuration  int     `json:"uploadDuration"`
	Fee             float64 `json:"fee"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
	UploadAt        string  `json:"uploadAt"`
	MediaURLs       []Media `json:"mediaUrls"`
}

// CreateAdvertisementRequest is the body of the investor create endpoint.
// One request is sent per target community.
type CreateAdvertisementRequest struct {
	CommunityID    int64   `json:"communityId"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Type           AdType  `json:"type"`
	UploadDuration int     `json:"uploadDuration"`
	Fee            float64 `json:"fee"`
	MediaList      []Media `json:"mediaList"`
}
