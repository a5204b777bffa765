package event

import "time"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionRenamed = "renamed"
)

type CategoryChanged struct {
	ID         string    `json:"id"`          // Event id
	CategoryID string    `json:"category_id"` // Category that changed
	Action     string    `json:"action"`      // created, updated, renamed
	Name       string    `json:"name"`        // Name after the change
	Slug       string    `json:"slug"`        // Slug after the change
	OccurredAt time.Time `json:"occurred_at"`
}

func (e *CategoryChanged) EventType() string {
	return "CategoryChanged"
}

func (e *CategoryChanged) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}
