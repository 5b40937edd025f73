package publish

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
	"github.com/Zuo-Peng/wa-digest/internal/parse"
)

const weekPrefix = "semana"

var urlRe = regexp.MustCompile(`https?://\S+`)

// WeekStats summarizes the raw batch behind a summary card.
type WeekStats struct {
	Messages     int
	Participants int
	Links        int
}

// ReadWeekStats reads semana_<start>_<end>.txt from dir. A missing or
// unreadable batch gives zero stats.
func ReadWeekStats(dir string, start, end civil.Date) WeekStats {
	if dir == "" {
		return WeekStats{}
	}
	data, err := os.ReadFile(filepath.Join(dir, civil.RangeName(weekPrefix, start, end, ".txt")))
	if err != nil {
		return WeekStats{}
	}
	return ComputeWeekStats(string(data))
}

func ComputeWeekStats(text string) WeekStats {
	var ws WeekStats
	ws.Links = len(urlRe.FindAllStringIndex(text, -1))

	msgs, err := parse.ParseString(text)
	if err != nil {
		return ws
	}
	authors := map[string]bool{}
	for _, m := range msgs {
		if m.System {
			continue
		}
		ws.Messages++
		authors[m.Sender] = true
	}
	ws.Participants = len(authors)
	return ws
}
