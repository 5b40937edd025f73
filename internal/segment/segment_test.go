package segment

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
	"github.com/Zuo-Peng/wa-digest/internal/parse"
)

const transcript = `05/01/2026 23:59 - Ana: antes
06/01/2026 00:00 - Bruno: primeira
continua aqui
12/01/2026 23:59 - Carla: última
13/01/2026 00:00 - Ana: depois
`

func mustParse(t *testing.T, text string) []parse.Message {
	t.Helper()
	msgs, err := parse.ParseString(text)
	require.NoError(t, err)
	return msgs
}

func mustDate(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.Parse(s)
	require.NoError(t, err)
	return d
}

func TestSegmentInclusiveBounds(t *testing.T) {
	msgs := mustParse(t, transcript)
	got := Segment(msgs, mustDate(t, "06/01/2026"), mustDate(t, "12/01/2026"))
	require.Len(t, got, 2)
	assert.Equal(t, "Bruno", got[0].Sender)
	assert.Equal(t, "Carla", got[1].Sender)

	assert.Equal(t,
		"06/01/2026 00:00 - Bruno: primeira\ncontinua aqui\n12/01/2026 23:59 - Carla: última\n",
		Serialize(got))
}

func TestSegmentInvertedWindowIsEmpty(t *testing.T) {
	msgs := mustParse(t, transcript)
	got := Segment(msgs, mustDate(t, "12/01/2026"), mustDate(t, "06/01/2026"))
	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, "", Serialize(got))
}

func TestSegmentNoMatches(t *testing.T) {
	msgs := mustParse(t, transcript)
	assert.Empty(t, Segment(msgs, mustDate(t, "01/02/2026"), mustDate(t, "07/02/2026")))
}

// Every window must yield an order-preserving subsequence of the input that
// contains exactly the in-window messages.
func TestSegmentIsPureFilter(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var msgs []parse.Message
	for i := 0; i < 200; i++ {
		ts := base.Add(time.Duration(i*90) * time.Minute)
		msgs = append(msgs, parse.Message{Timestamp: ts, Sender: "s", Body: string(rune('a' + i%26)), LineNumber: i + 1})
	}

	for trial := 0; trial < 100; trial++ {
		start := civil.DateOf(base).AddDays(rng.Intn(14) - 1)
		end := start.AddDays(rng.Intn(10) - 2)
		got := Segment(msgs, start, end)

		want := 0
		for _, m := range msgs {
			if !start.After(end) && m.Date().Within(start, end) {
				want++
			}
		}
		require.Len(t, got, want)

		j := 0
		for _, m := range got {
			require.True(t, m.Date().Within(start, end))
			for j < len(msgs) && msgs[j].LineNumber != m.LineNumber {
				j++
			}
			require.Less(t, j, len(msgs), "output is not a subsequence")
			j++
		}
	}
}

func TestRecords(t *testing.T) {
	msgs := mustParse(t, transcript)
	recs := Records(msgs[1:2])
	require.Len(t, recs, 1)
	assert.Equal(t, Record{
		Date:   "06/01/2026",
		Time:   "00:00:00",
		Sender: "Bruno",
		Body:   "primeira\ncontinua aqui",
		Line:   2,
	}, recs[0])
}
