package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestActiveAt_InsideWindow(t *testing.T) {
	d := &Discount{
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   datePtr(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)),
		Price:     999,
	}
	assert.True(t, d.ActiveAt(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)))
}

func TestActiveAt_BeforeStart(t *testing.T) {
	d := &Discount{
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.False(t, d.ActiveAt(time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC)))
}

func TestActiveAt_OnStartDate(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d := &Discount{StartDate: start}
	assert.True(t, d.ActiveAt(start))
}

func TestActiveAt_OnEndDate_Inclusive(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	d := &Discount{
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   &end,
	}
	assert.True(t, d.ActiveAt(end))
}

func TestActiveAt_AfterEnd(t *testing.T) {
	d := &Discount{
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   datePtr(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)),
	}
	assert.False(t, d.ActiveAt(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
}

func TestActiveAt_OpenEnded(t *testing.T) {
	d := &Discount{
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, d.ActiveAt(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
}
