package tag

import (
	"time"

	"github.com/freshtrack/tag-alerting/internal/infra/tagstore"
	"github.com/freshtrack/tag-alerting/internal/service/status"
)

// CreateInput carries everything needed to mint a tag. MadeAt is optional;
// the zero value means the preparation happened now.
type CreateInput struct {
	ProductID  string
	LocationID string
	CreatedBy  string
	Quantity   int
	Batch      string
	Notes      string
	MadeAt     time.Time
}

// TagWithStatus pairs a stored tag with its status derived at read time.
type TagWithStatus struct {
	tagstore.TagRecord
	Verdict status.Verdict
}
