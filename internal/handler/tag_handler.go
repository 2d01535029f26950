package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freshtrack/tag-alerting/internal/domain"
	"github.com/freshtrack/tag-alerting/internal/service/tag"
)

type TagHandler struct {
	tagService *tag.Service
}

func NewTagHandler(tagService *tag.Service) *TagHandler {
	return &TagHandler{tagService: tagService}
}

type createTagRequest struct {
	ProductID  string `json:"product_id" binding:"required"`
	LocationID string `json:"location_id" binding:"required"`
	CreatedBy  string `json:"created_by"`
	Quantity   int    `json:"quantity"`
	Batch      string `json:"batch"`
	Notes      string `json:"notes"`
	MadeAt     string `json:"made_at"`
}

type tagResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	CreatedBy  string `json:"created_by,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
	Batch      string `json:"batch,omitempty"`
	Notes      string `json:"notes,omitempty"`
	MadeAt     string `json:"made_at"`
	ReadyAt    string `json:"ready_at"`
	DiscardAt  string `json:"discard_at"`
	State      string `json:"lifecycle_state"`
	Printed    bool   `json:"printed"`
}

type tagStatusResponse struct {
	tagResponse
	ProductName      string `json:"product_name"`
	LocationName     string `json:"location_name"`
	Status           string `json:"status"`
	StatusLabel      string `json:"status_label"`
	MinutesToDiscard int    `json:"minutes_to_discard"`
	TimeRemaining    string `json:"time_remaining"`
}

func (h *TagHandler) HandleCreate(c *gin.Context) {
	ctx := c.Request.Context()

	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	input := tag.CreateInput{
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		CreatedBy:  req.CreatedBy,
		Quantity:   req.Quantity,
		Batch:      req.Batch,
		Notes:      req.Notes,
	}

	if req.MadeAt != "" {
		madeAt, err := time.Parse(time.RFC3339, req.MadeAt)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid made_at time format, expected RFC3339")
			return
		}
		input.MadeAt = madeAt
	}

	created, err := h.tagService.Create(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPolicy):
			respondError(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrLocationNotFound):
			respondError(c, http.StatusNotFound, err.Error())
		default:
			slog.ErrorContext(ctx, "tag creation failed",
				slog.String("product_id", req.ProductID),
				slog.String("error", err.Error()),
			)
			respondError(c, http.StatusBadGateway, "tag store unavailable")
		}
		return
	}

	c.JSON(http.StatusCreated, toTagResponse(created))
}

func (h *TagHandler) HandleDiscard(c *gin.Context) {
	h.updateTag(c, h.tagService.Discard)
}

func (h *TagHandler) HandlePrinted(c *gin.Context) {
	h.updateTag(c, h.tagService.MarkPrinted)
}

func (h *TagHandler) updateTag(c *gin.Context, op func(ctx context.Context, tagID string) error) {
	ctx := c.Request.Context()
	tagID := c.Param("id")

	if err := op(ctx, tagID); err != nil {
		if errors.Is(err, domain.ErrTagNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		slog.ErrorContext(ctx, "tag update failed",
			slog.String("tag_id", tagID),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadGateway, "tag store unavailable")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TagHandler) HandleList(c *gin.Context) {
	ctx := c.Request.Context()
	locationID := c.Query("location_id")

	tags, err := h.tagService.ListWithStatus(ctx, locationID)
	if err != nil {
		slog.ErrorContext(ctx, "tag listing failed",
			slog.String("location_id", locationID),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadGateway, "tag store unavailable")
		return
	}

	items := make([]tagStatusResponse, 0, len(tags))
	for _, tw := range tags {
		items = append(items, tagStatusResponse{
			tagResponse:      toTagResponse(tw.Tag),
			ProductName:      tw.ProductName,
			LocationName:     tw.LocationName,
			Status:           tw.Verdict.Status.String(),
			StatusLabel:      tw.Verdict.Status.Label(),
			MinutesToDiscard: tw.Verdict.MinutesToDiscard,
			TimeRemaining:    tw.Verdict.HumanTimeRemaining(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"tags": items})
}

func toTagResponse(t domain.Tag) tagResponse {
	return tagResponse{
		ID:         t.ID,
		ProductID:  t.ProductID,
		LocationID: t.LocationID,
		CreatedBy:  t.CreatedBy,
		Quantity:   t.Quantity,
		Batch:      t.Batch,
		Notes:      t.Notes,
		MadeAt:     t.MadeAt.Format(time.RFC3339),
		ReadyAt:    t.ReadyAt.Format(time.RFC3339),
		DiscardAt:  t.DiscardAt.Format(time.RFC3339),
		State:      t.State.String(),
		Printed:    t.Printed,
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error":   http.StatusText(status),
		"message": message,
	})
}
