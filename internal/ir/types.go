package ir

import (
	"encoding/json"
	"time"
)

// Entry types recorded by the inspection watchers.
const (
	TypeRequest   = "request"
	TypeQuery     = "query"
	TypeJob       = "job"
	TypeException = "exception"
	TypeLog       = "log"
	TypeCommand   = "command"
	TypeMail      = "mail"
	TypeCache     = "cache"
)

// DefaultLimit is the page size used when QueryOptions.Limit is unset.
const DefaultLimit = 50

// Entry is one immutable logged record.
type Entry struct {
	UUID                 string          `json:"uuid"`
	Sequence             int64           `json:"sequence"`
	BatchID              string          `json:"batch_id"`
	FamilyHash           string          `json:"family_hash,omitempty"` // empty means none
	Type                 string          `json:"type"`
	Content              json.RawMessage `json:"content"`
	Tags                 []string        `json:"tags"`
	ShouldDisplayOnIndex bool            `json:"should_display_on_index"`
	CreatedAt            time.Time       `json:"created_at"`
}

// QueryOptions selects the scope a tag filter runs over.
type QueryOptions struct {
	BatchID        string `json:"batch_id,omitempty"`
	FamilyHash     string `json:"family_hash,omitempty"`
	Tag            string `json:"tag,omitempty"`
	BeforeSequence int64  `json:"before_sequence,omitempty"` // 0 means no cursor
	Limit          int    `json:"limit,omitempty"`           // 0 means DefaultLimit
}

// ShowsAll reports whether the "display on index" restriction is lifted.
// Looking up a family, a tag filter or a batch shows hidden entries too.
func (o QueryOptions) ShowsAll() bool {
	return o.FamilyHash != "" || o.Tag != "" || o.BatchID != ""
}

// PageSize returns Limit, or DefaultLimit when Limit is not positive.
func (o QueryOptions) PageSize() int {
	if o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}
