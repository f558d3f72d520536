package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedCategoriesSumToHundred(t *testing.T) {
	total := 0
	for _, c := range Seed().Categories {
		total += c.Value
	}
	assert.Equal(t, 100, total)
}

func TestWithLiveLeavesSeedUntouched(t *testing.T) {
	base := Seed()
	live := base.WithLive(Live{ActiveSessions: 3})

	assert.Equal(t, 3, live.Live.ActiveSessions)
	assert.Zero(t, base.Live.ActiveSessions)
	assert.Equal(t, base.Activity, live.Activity)
}
