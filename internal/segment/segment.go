// Package segment selects messages by calendar window and cuts transcripts
// into weekly batches.
package segment

import (
	"strings"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
	"github.com/Zuo-Peng/wa-digest/internal/parse"
)

// Segment returns the messages dated within [start, end], both inclusive,
// in their original order. Time of day is ignored. An inverted window
// yields an empty result.
func Segment(msgs []parse.Message, start, end civil.Date) []parse.Message {
	out := []parse.Message{}
	if start.After(end) {
		return out
	}
	for _, m := range msgs {
		if m.Date().Within(start, end) {
			out = append(out, m)
		}
	}
	return out
}

// Serialize writes messages back as transcript text using their original
// lines, so a segment reads exactly like the export it came from.
func Serialize(msgs []parse.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		for _, line := range m.Lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Record is the JSON form of a message.
type Record struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Sender string `json:"sender"`
	Body   string `json:"body"`
	System bool   `json:"system,omitempty"`
	Line   int    `json:"line"`
}

func Records(msgs []parse.Message) []Record {
	out := make([]Record, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Record{
			Date:   m.Date().String(),
			Time:   m.Timestamp.Format("15:04:05"),
			Sender: m.Sender,
			Body:   m.Body,
			System: m.System,
			Line:   m.LineNumber,
		})
	}
	return out
}
