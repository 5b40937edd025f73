package segment

import (
	"github.com/Zuo-Peng/wa-digest/internal/civil"
	"github.com/Zuo-Peng/wa-digest/internal/parse"
)

const DefaultDays = 7

// Batch is one window produced by Weeks.
type Batch struct {
	Start    civil.Date
	End      civil.Date
	Messages []parse.Message
}

// Name is the conventional file name for the batch, e.g.
// semana_2026-01-06_2026-01-12.txt.
func (b Batch) Name(prefix, ext string) string {
	return civil.RangeName(prefix, b.Start, b.End, ext)
}

// Weeks cuts msgs into consecutive windows of days length beginning at
// from. A zero from starts at the first message's date. Messages dated
// before from are dropped and windows without messages are omitted.
func Weeks(msgs []parse.Message, from civil.Date, days int) []Batch {
	if len(msgs) == 0 {
		return nil
	}
	if days <= 0 {
		days = DefaultDays
	}
	if from.IsZero() {
		from = msgs[0].Date()
		for _, m := range msgs[1:] {
			if d := m.Date(); d.Before(from) {
				from = d
			}
		}
	}

	byWindow := make(map[int][]parse.Message)
	last := -1
	for _, m := range msgs {
		d := m.Date()
		if d.Before(from) {
			continue
		}
		idx := from.DaysUntil(d) / days
		byWindow[idx] = append(byWindow[idx], m)
		if idx > last {
			last = idx
		}
	}

	var out []Batch
	for i := 0; i <= last; i++ {
		ms, ok := byWindow[i]
		if !ok {
			continue
		}
		start := from.AddDays(i * days)
		out = append(out, Batch{Start: start, End: start.AddDays(days - 1), Messages: ms})
	}
	return out
}
