package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/community-console/internal/advert"
	"github.com/kurihiro0119/community-console/internal/allocator"
	"github.com/kurihiro0119/community-console/internal/community"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
	"github.com/kurihiro0119/community-console/internal/storage"
)

// Quoter prices an advertisement over a selection of communities
type Quoter interface {
	Quote(ctx context.Context, durationDays int, communityIDs []int64) (advert.Quote, error)
}

// Handler handles API requests
type Handler struct {
	store  storage.Storage
	quoter Quoter
}

// NewHandler creates a new API handler. quoter may be nil when no backend session is configured.
func NewHandler(store storage.Storage, quoter Quoter) *Handler {
	return &Handler{
		store:  store,
		quoter: quoter,
	}
}

// ListBatchRuns returns the most recent batch runs
// GET /api/v1/batches
func (h *Handler) ListBatchRuns(c *gin.Context) {
	limit := parseIntQuery(c, "limit", storage.DefaultListLimit)

	runs, err := h.store.ListBatchRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]batchRunResponse, 0, len(runs))
	for _, run := range runs {
		items = append(items, newBatchRunResponse(run))
	}
	c.JSON(http.StatusOK, gin.H{
		"data": items,
	})
}

// GetBatchRun returns one batch run with per-target progress
// GET /api/v1/batches/:id
func (h *Handler) GetBatchRun(c *gin.Context) {
	run, err := h.store.GetBatchRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": newBatchRunResponse(run),
	})
}

type allocationRequest struct {
	Primary   float64 `json:"primary" binding:"min=0,max=100"`
	Secondary float64 `json:"secondary" binding:"min=0,max=100"`
	Side      string  `json:"side" binding:"required,oneof=primary secondary"`
	Value     string  `json:"value"`
	Policy    string  `json:"policy" binding:"omitempty,oneof=clamp reject"`
}

type allocationResponse struct {
	Pair        allocator.Pair `json:"pair"`
	Value       float64        `json:"value"`
	Policy      string         `json:"policy"`
	Empty       bool           `json:"empty"`
	Committable bool           `json:"committable"`
	Message     string         `json:"message,omitempty"`
}

// PreviewAllocation applies one edit to a linked percentage pair
// POST /api/v1/allocations
func (h *Handler) PreviewAllocation(c *gin.Context) {
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error(), err))
		return
	}

	side, err := allocator.ParseSide(req.Side)
	if err != nil {
		respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}
	policy := allocator.ClampEmpty
	if req.Policy == allocator.RejectEmpty.String() {
		policy = allocator.RejectEmpty
	}

	current := allocator.NewPair(req.Primary, req.Secondary)
	if !current.Balanced() {
		respondError(c, apperrors.NewValidationError(
			fmt.Sprintf("primary and secondary must sum to %g", allocator.Total), nil))
		return
	}

	pair := allocator.NewLinkedPair(current, policy)
	p, err := pair.SetValue(side, req.Value)
	resp := allocationResponse{
		Pair:        p,
		Value:       p.Get(side),
		Policy:      pair.Policy().String(),
		Empty:       pair.IsEmpty(side),
		Committable: pair.Committable(),
	}
	switch {
	case errors.Is(err, allocator.ErrEmptyValue):
		resp.Message = err.Error()
	case err != nil:
		respondError(c, apperrors.NewValidationError(err.Error(), err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resp,
	})
}

type quoteRequest struct {
	CommunityIDs   []int64 `json:"communityIds" binding:"required,min=1"`
	UploadDuration int     `json:"uploadDuration" binding:"required,min=1,max=30"`
}

// QuoteAdvertisement prices an advertisement against the wallet balance
// POST /api/v1/ads/quote
func (h *Handler) QuoteAdvertisement(c *gin.Context) {
	if h.quoter == nil {
		respondError(c, apperrors.NewUnauthorizedError("no backend session configured"))
		return
	}

	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error(), err))
		return
	}

	quote, err := h.quoter.Quote(c.Request.Context(), req.UploadDuration, req.CommunityIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": quote,
	})
}

// ListLocations returns the catalog of locations and their areas
// GET /api/v1/locations
func (h *Handler) ListLocations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": community.Locations,
	})
}

// parseIntQuery parses an integer query parameter with a default value
func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	var remote *apperrors.RemoteError
	if apperrors.CodeOf(err) == "" && errors.As(err, &remote) {
		err = apperrors.NewRemoteRejectedError(remote)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeUnauthorized:
			status = http.StatusUnauthorized
		case apperrors.ErrCodeForbidden:
			status = http.StatusForbidden
		case apperrors.ErrCodeBadRequest, apperrors.ErrCodeValidation:
			status = http.StatusBadRequest
		case apperrors.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		case apperrors.ErrCodeInsufficientFunds:
			status = http.StatusUnprocessableEntity
		case apperrors.ErrCodeRemoteRejected:
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrCodeInternal,
			"message": err.Error(),
		},
	})
}
