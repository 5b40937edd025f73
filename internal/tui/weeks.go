package tui

import (
	"strings"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
	"github.com/Zuo-Peng/wa-digest/internal/search"
)

// weekGroup is one summary and the sections of it that matched. Groups keep
// the order in which their first hit arrived, so the best-ranked week leads.
type weekGroup struct {
	summary search.Result // SectionID -1: the summary as a whole
	hits    []search.Result
}

func groupByWeek(results []search.Result) []weekGroup {
	var groups []weekGroup
	at := make(map[string]int)
	for _, r := range results {
		i, ok := at[r.SummaryKey]
		if !ok {
			whole := r
			whole.SectionID, whole.Heading, whole.LineNumber = -1, "", 0
			i = len(groups)
			at[r.SummaryKey] = i
			groups = append(groups, weekGroup{summary: whole})
		}
		// listings carry no section
		if r.SectionID >= 0 {
			groups[i].hits = append(groups[i].hits, r)
		}
	}
	return groups
}

func (g weekGroup) result(hit int) search.Result {
	if hit < 0 {
		return g.summary
	}
	return g.hits[hit]
}

// row is one list line: a week header (hit == -1) or one of its hits.
type row struct {
	group int
	hit   int
}

func flatten(groups []weekGroup) []row {
	var rows []row
	for gi, g := range groups {
		rows = append(rows, row{group: gi, hit: -1})
		for hi := range g.hits {
			rows = append(rows, row{group: gi, hit: hi})
		}
	}
	return rows
}

// weekLabel formats a summary's range as "12/01 a 18/01/2026", spelling out
// both years when the week crosses New Year.
func weekLabel(startISO, endISO string) string {
	s, err1 := civil.ParseISO(startISO)
	e, err2 := civil.ParseISO(endISO)
	if err1 != nil || err2 != nil {
		return startISO + " a " + endISO
	}
	if s.Year == e.Year {
		return s.String()[:5] + " a " + e.String()
	}
	return s.String() + " a " + e.String()
}

// period narrows results to weeks ending inside a recent window.
type period struct {
	label string
	days  int // 0: no window
}

var periods = []period{
	{"todas as semanas", 0},
	{"últimas 4 semanas", 28},
	{"últimos 3 meses", 91},
	{"último ano", 365},
}

// since is the lower bound on week end dates for p. A --since from the
// command line still wins when it is later.
func since(p period, base string, today civil.Date) string {
	if p.days == 0 {
		return base
	}
	s := today.AddDays(-p.days).ISO()
	if strings.Compare(base, s) > 0 {
		return base
	}
	return s
}
