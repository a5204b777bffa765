package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalEvent_CategoryChanged(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := &CategoryChanged{
		ID:         "evt-1",
		CategoryID: "rings",
		Action:     ActionRenamed,
		Name:       "Men's Rings",
		Slug:       "mens-rings",
		OccurredAt: at,
	}

	data, err := in.EventValue()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category_id":"rings"`)

	out, err := UnmarshalEvent[*CategoryChanged](data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, "CategoryChanged", out.EventType())
}
