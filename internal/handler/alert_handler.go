package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freshtrack/tag-alerting/internal/domain"
	"github.com/freshtrack/tag-alerting/internal/service/alert"
)

type AlertHandler struct {
	manager *alert.Manager
}

func NewAlertHandler(manager *alert.Manager) *AlertHandler {
	return &AlertHandler{manager: manager}
}

type alertEventResponse struct {
	ID            string `json:"id"`
	Severity      string `json:"severity"`
	TagID         string `json:"tag_id"`
	ProductName   string `json:"product_name"`
	LocationName  string `json:"location_name"`
	TimeRemaining string `json:"time_remaining"`
	GeneratedAt   string `json:"generated_at"`
	Sound         bool   `json:"sound"`
}

type alertSnapshotResponse struct {
	Scope       string               `json:"scope"`
	GeneratedAt string               `json:"generated_at"`
	Stale       bool                 `json:"stale"`
	Front       *alertEventResponse  `json:"front"`
	Events      []alertEventResponse `json:"events"`
}

// HandlePoll returns the live queue for the caller's scope, lazily starting
// the scope's evaluation loop on first poll. The first response after a cold
// start may be empty; the scheduler fills it on its first tick.
func (h *AlertHandler) HandlePoll(c *gin.Context) {
	scope := alert.Scope{LocationID: c.Query("location_id")}

	scheduler := h.manager.Get(scope)
	if scheduler == nil {
		respondError(c, http.StatusServiceUnavailable, "alerting is shutting down")
		return
	}

	snap := scheduler.Snapshot()

	resp := alertSnapshotResponse{
		Scope:  snap.Scope,
		Stale:  snap.Stale,
		Events: make([]alertEventResponse, 0, len(snap.Events)),
	}
	if !snap.GeneratedAt.IsZero() {
		resp.GeneratedAt = snap.GeneratedAt.Format(time.RFC3339)
	}
	for _, ev := range snap.Events {
		resp.Events = append(resp.Events, toAlertEventResponse(ev))
	}
	if snap.Front != nil {
		front := toAlertEventResponse(*snap.Front)
		resp.Front = &front
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AlertHandler) HandleAcknowledge(c *gin.Context) {
	ctx := c.Request.Context()
	eventID := c.Param("id")
	scope := alert.Scope{LocationID: c.Query("location_id")}

	scheduler, ok := h.manager.Lookup(scope)
	if !ok {
		// No running scope means nothing is live; the acknowledgment is
		// stale by definition.
		c.Status(http.StatusNoContent)
		return
	}

	if err := scheduler.Acknowledge(ctx, eventID); err != nil {
		slog.ErrorContext(ctx, "acknowledgment failed",
			slog.String("event_id", eventID),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadGateway, "failed to complete acknowledgment")
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleUnwatch stops a scope's evaluation loop when no viewer needs it.
func (h *AlertHandler) HandleUnwatch(c *gin.Context) {
	scope := alert.Scope{LocationID: c.Query("location_id")}
	h.manager.Stop(scope)
	c.Status(http.StatusNoContent)
}

func toAlertEventResponse(ev domain.AlertEvent) alertEventResponse {
	return alertEventResponse{
		ID:            ev.ID,
		Severity:      ev.Severity.String(),
		TagID:         ev.TagID,
		ProductName:   ev.ProductName,
		LocationName:  ev.LocationName,
		TimeRemaining: ev.TimeRemaining,
		GeneratedAt:   ev.GeneratedAt.Format(time.RFC3339),
		Sound:         ev.Sound,
	}
}
