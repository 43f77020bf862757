package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRange(t *testing.T) {
	now := time.Date(2024, 6, 30, 15, 4, 5, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	r := NormalizeRange(time.Time{}, time.Time{}, now)
	assert.Equal(t, day(2021, 6, 30), r.Start)
	assert.Equal(t, day(2024, 6, 30), r.End)

	r = NormalizeRange(day(2023, 1, 1), time.Time{}, now)
	assert.Equal(t, day(2023, 1, 1), r.Start)

	r = NormalizeRange(day(2024, 3, 1), day(2024, 1, 1), now)
	assert.Equal(t, day(2024, 1, 1), r.Start)
	assert.Equal(t, day(2024, 3, 1), r.End)
}
