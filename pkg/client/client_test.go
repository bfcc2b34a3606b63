package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
	"github.com/kurihiro0119/community-console/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		CommonURL: srv.URL,
		Logger:    logger.Discard(),
	}, &Session{AccessToken: "tok-123", Role: RoleAdmin})
}

func TestGetAdminCommunities_DecodesEnvelope(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/admin-community/get-communities", r.URL.Path)
		require.Equal(t, "tok-123", r.Header.Get("accessToken"))
		_, _ = io.WriteString(w, `{"success":true,"message":null,"code":null,"data":[{
			"communityId": 7,
			"name": "Green",
			"maxParticipation": 200,
			"memberSharePercentage": 70,
			"managementSharePercentage": 30,
			"totalMembers": 12,
			"rewardDistribution": {"communityPercentage": 60, "taskParticipantPercentage": 40},
			"advertisementDistribution": {"userPercentage": 80, "communityPercentage": 20}
		}]}`)
	})

	got, err := c.GetAdminCommunities(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(7), got[0].CommunityID)
	require.Equal(t, 70.0, got[0].MemberSharePercentage)
	require.Equal(t, 40.0, got[0].RewardDistribution.TaskParticipantPercentage)
	require.Equal(t, 80.0, got[0].AdvertisementDistribution.UserPercentage)
}

func TestUpdateCommunity_SendsBodyAndQuery(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "9", r.URL.Query().Get("communityId"))

		var body map[string]float64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, 55.0, body["memberSharePercentage"])
		require.Equal(t, 45.0, body["managementSharePercentage"])
		require.Equal(t, 150.0, body["maxParticipation"])
		_, _ = io.WriteString(w, `{"success":true,"data":null,"message":"ok"}`)
	})

	err := c.UpdateCommunity(context.Background(), 9, domain.UpdateCommunityRequest{
		MaxParticipation:          150,
		MemberSharePercentage:     55,
		ManagementSharePercentage: 45,
	})
	require.NoError(t, err)
}

func TestCall_RejectionOnErrorStatusIsResult(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"data":null,"message":"Insufficient balance","code":"E42"}`)
	})

	res, err := Call[Empty](context.Background(), c, http.MethodPost, "/investor-advertisement/create", nil, map[string]int{"communityId": 1})
	require.NoError(t, err)
	require.False(t, res.OK())
	require.Equal(t, "Insufficient balance", res.MessageText())

	var remote *apperrors.RemoteError
	require.True(t, errors.As(res.Err(), &remote))
	require.Equal(t, "E42", remote.RemoteCode)
	require.Equal(t, "/investor-advertisement/create", remote.Endpoint)
}

func TestCall_NonEnvelopeErrorIsHTTPError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.GetUserWallet(context.Background())
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestCall_SuccessWithoutEnvelopeIsError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"balance": 10}`)
	})

	_, err := c.GetUserWallet(context.Background())
	require.Error(t, err)
}

func TestFetchExistedLocationRanges_EscapesLocation(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Shah Alam-Elmina", r.URL.Query().Get("location"))
		_, _ = io.WriteString(w, `{"success":true,"data":[{"startX":10,"startY":10,"width":35,"height":35}]}`)
	})

	got, err := c.FetchExistedLocationRanges(context.Background(), "Shah Alam-Elmina")
	require.NoError(t, err)
	require.Equal(t, []domain.ExistedRange{{StartX: 10, StartY: 10, Width: 35, Height: 35}}, got)
}

func TestClient_WithoutSessionRejectsAuthenticatedCalls(t *testing.T) {
	t.Parallel()
	c := NewClient(Options{CommonURL: "http://127.0.0.1:1", Logger: logger.Discard()}, nil)
	require.Nil(t, c.Session())
	_, err := c.GetAllCommunities(context.Background())
	require.ErrorContains(t, err, "no session")
}

func TestSession_Require(t *testing.T) {
	t.Parallel()
	admin := &Session{AccessToken: "tok", Role: RoleAdmin}
	require.NoError(t, admin.Require(RoleAdmin))

	err := admin.Require(RoleInvestor)
	require.Equal(t, apperrors.ErrCodeForbidden, apperrors.CodeOf(err))
	require.ErrorContains(t, err, "investor")

	member := &Session{AccessToken: "tok"}
	require.Equal(t, apperrors.ErrCodeForbidden, apperrors.CodeOf(member.Require(RoleAdmin)))

	var none *Session
	require.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(none.Require(RoleAdmin)))

	c := NewClient(Options{CommonURL: "http://127.0.0.1:1"}, admin)
	require.Same(t, admin, c.Session())
}

func TestResult_ValueWithoutData(t *testing.T) {
	t.Parallel()
	r := Result[domain.Wallet]{Success: true}
	v, err := r.Value()
	require.NoError(t, err)
	require.Equal(t, domain.Wallet{}, v)

	r = Result[domain.Wallet]{Success: false}
	_, err = r.Value()
	require.ErrorContains(t, err, "request was rejected")
}
