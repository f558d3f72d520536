package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(Seed())

	items := store.List()
	assert.Len(t, items, 3)
	items[0].Title = "mutated"
	assert.Equal(t, "Blood Panel Results", store.List()[0].Title)

	report, ok := store.FindByID("vitamin-d")
	assert.True(t, ok)
	assert.Equal(t, "Vitamin D Test", report.Title)

	_, ok = store.FindByID("missing")
	assert.False(t, ok)
}
