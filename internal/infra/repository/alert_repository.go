package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freshtrack/tag-alerting/internal/domain"
)

const (
	raisedKeyPrefix = "alert:raised:"
	ackedKeyPrefix  = "alert:acked:"

	// Records must outlive the longest plausible tag window (multi-day
	// end-of-day policies) so escalation stays once-per-raise across
	// restarts.
	raisedRecordTTL = 7 * 24 * time.Hour
	ackedRecordTTL  = 7 * 24 * time.Hour
)

type raisedRecord struct {
	EventID  string    `json:"event_id"`
	RaisedAt time.Time `json:"raised_at"`
}

type ackedRecord struct {
	EventID string    `json:"event_id"`
	AckedAt time.Time `json:"acked_at"`
}

type alertRepository struct {
	client *redis.Client
}

func NewAlertRepository(client *redis.Client) domain.AlertRepository {
	return &alertRepository{
		client: client,
	}
}

func (r *alertRepository) MarkRaised(ctx context.Context, eventID string, raisedAt time.Time) (bool, error) {
	key := raisedKeyPrefix + eventID

	data, err := json.Marshal(raisedRecord{
		EventID:  eventID,
		RaisedAt: raisedAt,
	})
	if err != nil {
		return false, ErrInvalidEventData
	}

	first, err := r.client.SetNX(ctx, key, data, raisedRecordTTL).Result()
	if err != nil {
		return false, err
	}

	return first, nil
}

func (r *alertRepository) ClearRaised(ctx context.Context, eventID string) error {
	return r.client.Del(ctx, raisedKeyPrefix+eventID).Err()
}

func (r *alertRepository) MarkAcknowledged(ctx context.Context, eventID string, ackedAt time.Time) error {
	key := ackedKeyPrefix + eventID

	data, err := json.Marshal(ackedRecord{
		EventID: eventID,
		AckedAt: ackedAt,
	})
	if err != nil {
		return ErrInvalidEventData
	}

	return r.client.Set(ctx, key, data, ackedRecordTTL).Err()
}

func (r *alertRepository) IsAcknowledged(ctx context.Context, eventID string) (bool, error) {
	exists, err := r.client.Exists(ctx, ackedKeyPrefix+eventID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	return exists > 0, nil
}

func (r *alertRepository) ClearAcknowledged(ctx context.Context, eventID string) error {
	return r.client.Del(ctx, ackedKeyPrefix+eventID).Err()
}
