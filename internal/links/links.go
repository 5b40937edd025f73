// Package links finds URLs shared in a chat, strips tracking noise, and
// maintains the JSON link registry used by the site.
package links

import (
	"regexp"
	"strings"

	"github.com/Zuo-Peng/wa-digest/internal/parse"
)

// Link status values.
const (
	StatusPending = "pending"
	StatusValid   = "valid"
	StatusInvalid = "invalid"
	StatusTimeout = "timeout"
	StatusError   = "error"
)

const contextLen = 200

type Occurrence struct {
	SharedBy string `json:"shared_by"`
	Date     string `json:"date"`
	Context  string `json:"context,omitempty"`
}

// Record is one distinct normalized URL. Attribution fields describe its
// first occurrence; later ones are kept in Occurrences.
type Record struct {
	URL          string       `json:"url"`
	URLOriginal  string       `json:"url_original,omitempty"`
	Domain       string       `json:"domain"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	SharedBy     string       `json:"shared_by"`
	Date         string       `json:"date"`
	Context      string       `json:"context,omitempty"`
	Count        int          `json:"count"`
	Occurrences  []Occurrence `json:"occurrences,omitempty"`
	Status       string       `json:"status"`
	StatusCode   int          `json:"status_code,omitempty"`
	FinalURL     string       `json:"final_url,omitempty"`
	Enriched     bool         `json:"enriched,omitempty"`
	EnrichStatus string       `json:"enrich_status,omitempty"`
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// FindURLs returns the URLs in text in order of appearance, with trailing
// sentence punctuation removed.
func FindURLs(text string) []string {
	found := urlPattern.FindAllString(text, -1)
	out := found[:0]
	for _, u := range found {
		u = strings.TrimRight(u, ".,;:!?*")
		if len(u) > len("https://") {
			out = append(out, u)
		}
	}
	return out
}

// Extract returns one record per distinct normalized URL in first-seen
// order. System notices are ignored.
func Extract(msgs []parse.Message) []Record {
	var out []Record
	index := make(map[string]int)

	for _, m := range msgs {
		if m.System {
			continue
		}
		ctx := snippet(m.Body, contextLen)
		for _, raw := range FindURLs(m.Body) {
			norm := Normalize(raw)
			if i, ok := index[norm]; ok {
				out[i].Count++
				out[i].Occurrences = append(out[i].Occurrences, Occurrence{
					SharedBy: m.Sender,
					Date:     m.Date().String(),
					Context:  ctx,
				})
				continue
			}
			rec := Record{
				URL:      norm,
				Domain:   DomainOf(norm),
				Title:    Title(norm),
				SharedBy: m.Sender,
				Date:     m.Date().String(),
				Context:  ctx,
				Count:    1,
				Status:   StatusPending,
			}
			if raw != norm {
				rec.URLOriginal = raw
			}
			index[norm] = len(out)
			out = append(out, rec)
		}
	}
	return out
}

func snippet(body string, n int) string {
	s := strings.Join(strings.Fields(body), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
