package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
)

func TestWeeksFromFirstMessage(t *testing.T) {
	msgs := mustParse(t, `05/01/2026 10:00 - A: um
06/01/2026 10:00 - B: dois
11/01/2026 10:00 - A: três
12/01/2026 10:00 - B: quatro
30/01/2026 10:00 - A: cinco
`)
	batches := Weeks(msgs, civil.Date{}, 0)
	require.Len(t, batches, 3)

	assert.Equal(t, "semana_2026-01-05_2026-01-11.txt", batches[0].Name("semana", ".txt"))
	assert.Len(t, batches[0].Messages, 3)
	assert.Equal(t, "2026-01-12", batches[1].Start.ISO())
	assert.Len(t, batches[1].Messages, 1)
	// 19/01 - 25/01 has no messages and is skipped.
	assert.Equal(t, "2026-01-26", batches[2].Start.ISO())
	assert.Equal(t, "2026-02-01", batches[2].End.ISO())
}

func TestWeeksFromExplicitStart(t *testing.T) {
	msgs := mustParse(t, `05/01/2026 10:00 - A: um
06/01/2026 10:00 - B: dois
`)
	batches := Weeks(msgs, mustDate(t, "06/01/2026"), 3)
	require.Len(t, batches, 1)
	assert.Equal(t, "2026-01-08", batches[0].End.ISO())
	require.Len(t, batches[0].Messages, 1)
	assert.Equal(t, "B", batches[0].Messages[0].Sender)
}

func TestWeeksEmpty(t *testing.T) {
	assert.Nil(t, Weeks(nil, civil.Date{}, 7))
}
