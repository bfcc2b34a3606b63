package domain

// RewardDistribution is the community / task participant split of rewards
type RewardDistribution struct {
	CommunityPercentage       float64 `json:"communityPercentage"`
	TaskParticipantPercentage float64 `json:"taskParticipantPercentage"`
}

// AdvertisementDistribution is the user / community split of advertisement revenue
type AdvertisementDistribution struct {
	UserPercentage      float64 `json:"userPercentage"`
	CommunityPercentage float64 `json:"communityPercentage"`
}

// QuestionnaireScores holds the environmental questionnaire averages of a community.
// Scores are nil until at least one questionnaire was answered.
type QuestionnaireScores struct {
	AirQualityScore    *float64 `json:"airQualityScore"`
	WaterQualityScore  *float64 `json:"waterQualityScore"`
	EnvironmentalScore *float64 `json:"environmentalScore"`
	ParticipantsCount  int      `json:"participantsCount"`
}

// Community is a community configuration record as served by the backend
type Community struct {
	CommunityID               int64                      `json:"communityId"`
	Name                      string                     `json:"name"`
	Location                  string                     `json:"location"`
	MaxParticipation          int                        `json:"maxParticipation"`
	MemberSharePercentage     float64                    `json:"memberSharePercentage"`
	ManagementSharePercentage float64                    `json:"managementSharePercentage"`
	TotalMembers              int                        `json:"totalMembers"`
	AdminName                 string                     `json:"adminName"`
	CreatedAt                 string                     `json:"createdAt"`
	RewardDistribution        *RewardDistribution        `json:"rewardDistribution"`
	AdvertisementDistribution *AdvertisementDistribution `json:"advertisementDistribution"`
	QuestionnaireScores       *QuestionnaireScores       `json:"questionnaireScores"`
	MembershipStatus          *string                    `json:"membershipStatus"`
}

// UpdateCommunityRequest is the body of the update-community endpoint
type UpdateCommunityRequest struct {
	MaxParticipation          int     `json:"maxParticipation"`
	MemberSharePercentage     float64 `json:"memberSharePercentage"`
	ManagementSharePercentage float64 `json:"managementSharePercentage"`
	CommunityPercentage       float64 `json:"communityPercentage"`
	TaskParticipantPercentage float64 `json:"taskParticipantPercentage"`
}

// CreateCommunityRequest is the body of the create-community endpoint
type CreateCommunityRequest struct {
	Name                      string  `json:"name"`
	Location                  string  `json:"location"`
	StartX                    float64 `json:"startX"`
	StartY                    float64 `json:"startY"`
	Width                     float64 `json:"width"`
	Height                    float64 `json:"height"`
	MaxParticipation          int     `json:"maxParticipation"`
	MemberSharePercentage     float64 `json:"memberSharePercentage"`
	ManagementSharePercentage float64 `json:"managementSharePercentage"`
	AdminID                   int64   `json:"adminId"`
	CommunityPercentage       float64 `json:"communityPercentage"`
	TaskParticipantPercentage float64 `json:"taskParticipantPercentage"`
}

// ExistedRange is a map rectangle already taken by a community, in percent of the map
type ExistedRange struct {
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Wallet is the balance of the signed-in user
type Wallet struct {
	Balance float64 `json:"balance"`
}
