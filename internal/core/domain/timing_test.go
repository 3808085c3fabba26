package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/delta/internal/core/domain"
)

func TestTimeMap(t *testing.T) {
	t.Run("identity offset", func(t *testing.T) {
		m := domain.TimeMap{Points: []domain.TimePoint{{Global: 500, Local: 0}, {Global: 1500, Local: 1000}}}
		assert.Equal(t, domain.Time(250), m.ToLocal(750))
		assert.Equal(t, domain.Time(750), m.ToGlobal(250))
		assert.False(t, m.Stretched())
	})

	t.Run("piecewise stretch", func(t *testing.T) {
		m := domain.TimeMap{Points: []domain.TimePoint{
			{Global: 0, Local: 0},
			{Global: 200, Local: 100},
			{Global: 300, Local: 300},
		}}
		assert.True(t, m.Stretched())
		assert.Equal(t, domain.Time(50), m.ToLocal(100))
		assert.Equal(t, domain.Time(100), m.ToLocal(200))
		assert.Equal(t, domain.Time(200), m.ToLocal(250))
		assert.Equal(t, domain.Time(250), m.ToGlobal(200))
		assert.Equal(t, domain.Time(500), m.ToLocal(400), "extends the last segment")
		assert.Equal(t, domain.Time(-50), m.ToLocal(-100), "extends the first segment")
	})
}

func TestFrameRate(t *testing.T) {
	r := domain.FrameRate{Num: 30000, Den: 1001}
	assert.True(t, r.Valid())
	assert.Equal(t, domain.Time(0), r.FrameTime(0))
	assert.Equal(t, domain.Time(23_543_520), r.FrameTime(1))
	assert.Equal(t, int64(100), r.FrameAt(r.FrameTime(100)))
	assert.Equal(t, 48_000, domain.SamplesIn(domain.Seconds(1), 48_000))

	long := domain.Seconds(200 * 3600)
	assert.Equal(t, int64(21_578_421), r.FrameAt(long), "long timelines do not overflow")
	assert.Equal(t, int64(21_578_421), r.FrameAt(r.FrameTime(21_578_421)))
	assert.Equal(t, 34_560_000_000, domain.SamplesIn(long, 48_000))
	assert.Equal(t, int64(-1), r.FrameAt(-1), "negative times floor")
	assert.Equal(t, -1, domain.SamplesIn(-1, 48_000))

	s := domain.Span{Start: domain.Seconds(5), End: domain.Seconds(10)}
	assert.True(t, s.Contains(domain.Seconds(5)))
	assert.False(t, s.Contains(domain.Seconds(10)))
	assert.True(t, s.Overlaps(domain.Span{Start: domain.Seconds(9), End: domain.Seconds(11)}))
	assert.False(t, s.Overlaps(domain.Span{Start: domain.Seconds(10), End: domain.Seconds(11)}))
}
