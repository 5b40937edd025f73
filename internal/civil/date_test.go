package civil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("06/01/2026")
	require.NoError(t, err)
	assert.Equal(t, Date{2026, time.January, 6}, d)
	assert.Equal(t, "06/01/2026", d.String())
	assert.Equal(t, "2026-01-06", d.ISO())

	for _, in := range []string{"6/1/2026", "6/01/2026", "06/1/2026"} {
		d, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, Date{2026, time.January, 6}, d, in)
	}

	for _, bad := range []string{"", "2026-01-06", "006/01/2026", "6/1/26", "31/02/2026", "00/01/2026", "06/13/2026"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestCompareAndWithin(t *testing.T) {
	start := Date{2026, time.January, 6}
	end := Date{2026, time.January, 12}

	assert.True(t, start.Within(start, end))
	assert.True(t, end.Within(start, end))
	assert.False(t, start.AddDays(-1).Within(start, end))
	assert.False(t, end.AddDays(1).Within(start, end))
	assert.False(t, start.Within(end, start), "inverted window matches nothing")

	assert.Equal(t, Date{2026, time.February, 1}, Date{2026, time.January, 31}.AddDays(1))
	assert.Equal(t, 6, start.DaysUntil(end))
	assert.True(t, Date{2025, time.December, 31}.Before(start))
}

func TestRangeName(t *testing.T) {
	start := Date{2026, time.January, 6}
	end := Date{2026, time.January, 12}
	name := RangeName("semana", start, end, ".txt")
	assert.Equal(t, "semana_2026-01-06_2026-01-12.txt", name)

	s, e, ok := ParseRangeName("resumo_semana_2026-01-06_2026-01-12.md")
	require.True(t, ok)
	assert.Equal(t, start, s)
	assert.Equal(t, end, e)

	_, _, ok = ParseRangeName("resumo.md")
	assert.False(t, ok)
	_, _, ok = ParseRangeName("x_2026-13-01_2026-01-12.md")
	assert.False(t, ok)
}
