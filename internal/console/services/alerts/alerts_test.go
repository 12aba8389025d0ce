package alerts_test

import (
	"testing"

	"github.com/Leopold1975/gis_console/internal/console/services/alerts"
	"github.com/stretchr/testify/assert"
)

func TestDrainEmptiesQueue(t *testing.T) {
	var q alerts.Queue

	assert.Equal(t, []string{}, q.Drain())

	q.Alert("one")
	q.Alert("two")

	assert.Equal(t, []string{"one", "two"}, q.Drain())
	assert.Equal(t, []string{}, q.Drain())
}
