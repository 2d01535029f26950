package tagstore

import (
	"time"

	"github.com/freshtrack/tag-alerting/internal/domain"
)

type tagDTO struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name,omitempty"`
	LocationID     string    `json:"location_id"`
	LocationName   string    `json:"location_name,omitempty"`
	CreatedBy      string    `json:"created_by"`
	Quantity       int       `json:"quantity"`
	Batch          string    `json:"batch,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	MadeAt         time.Time `json:"made_at"`
	ReadyAt        time.Time `json:"ready_at"`
	DiscardAt      time.Time `json:"discard_at"`
	LifecycleState string    `json:"lifecycle_state"`
	Printed        bool      `json:"printed"`
}

type tagsResponse struct {
	Tags  []tagDTO `json:"tags"`
	Count int      `json:"count"`
}

type tagUpdateRequest struct {
	LifecycleState *string `json:"lifecycle_state,omitempty"`
	Printed        *bool   `json:"printed,omitempty"`
}

type policyDTO struct {
	Kind             string `json:"kind"`
	ReadyOffsetMin   int    `json:"ready_offset_min"`
	DiscardOffsetMin int    `json:"discard_offset_min"`
	DayOffset        int    `json:"day_offset"`
}

type productDTO struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Policy policyDTO `json:"time_policy"`
}

type locationDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone,omitempty"`
}

func tagFromDTO(d tagDTO) domain.Tag {
	return domain.Tag{
		ID:         d.ID,
		ProductID:  d.ProductID,
		LocationID: d.LocationID,
		CreatedBy:  d.CreatedBy,
		Quantity:   d.Quantity,
		Batch:      d.Batch,
		Notes:      d.Notes,
		MadeAt:     d.MadeAt,
		ReadyAt:    d.ReadyAt,
		DiscardAt:  d.DiscardAt,
		State:      domain.LifecycleState(d.LifecycleState),
		Printed:    d.Printed,
	}
}

func tagToDTO(t domain.Tag) tagDTO {
	return tagDTO{
		ID:             t.ID,
		ProductID:      t.ProductID,
		LocationID:     t.LocationID,
		CreatedBy:      t.CreatedBy,
		Quantity:       t.Quantity,
		Batch:          t.Batch,
		Notes:          t.Notes,
		MadeAt:         t.MadeAt,
		ReadyAt:        t.ReadyAt,
		DiscardAt:      t.DiscardAt,
		LifecycleState: t.State.String(),
		Printed:        t.Printed,
	}
}

func recordFromDTO(d tagDTO) TagRecord {
	return TagRecord{
		Tag:          tagFromDTO(d),
		ProductName:  d.ProductName,
		LocationName: d.LocationName,
	}
}

func productFromDTO(d productDTO) domain.Product {
	return domain.Product{
		ID:   d.ID,
		Name: d.Name,
		Policy: domain.TimePolicy{
			Kind:             domain.PolicyKind(d.Policy.Kind),
			ReadyOffsetMin:   d.Policy.ReadyOffsetMin,
			DiscardOffsetMin: d.Policy.DiscardOffsetMin,
			DayOffset:        d.Policy.DayOffset,
		},
	}
}

func locationFromDTO(d locationDTO) domain.Location {
	return domain.Location{
		ID:       d.ID,
		Name:     d.Name,
		Timezone: d.Timezone,
	}
}
