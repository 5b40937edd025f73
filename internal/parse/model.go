package parse

import (
	"time"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
)

// Message is one chat message. System notices (member joins, subject
// changes) have an empty Sender and System set.
type Message struct {
	Timestamp  time.Time // wall clock of the export, carried in UTC
	Sender     string
	Body       string   // continuation lines joined with "\n"
	Lines      []string // original lines, header first
	LineNumber int      // line of the header in the transcript
	System     bool
}

func (m Message) Date() civil.Date {
	return civil.DateOf(m.Timestamp)
}

// Summary is a Markdown weekly summary split into level-2 sections.
type Summary struct {
	Path     string
	Name     string
	Start    civil.Date
	End      civil.Date
	Title    string
	Text     string
	Sections []Section
	Mtime    time.Time
	Size     int64
}

type Section struct {
	ID         int
	Heading    string // "" for text before the first heading
	Text       string
	LineNumber int // line of the heading in the file
}

// Key identifies a summary in the search index.
func (s *Summary) Key() string {
	return s.Start.ISO() + "_" + s.End.ISO()
}
