package publish

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
	"github.com/Zuo-Peng/wa-digest/internal/links"
)

type siteLink struct {
	URL      string
	Title    string
	Domain   string
	Date     civil.Date
	SharedBy string
}

// collectLinks merges links from the summaries and/or the registry, first
// occurrence wins, newest first.
func collectLinks(posts []*Post, source, registry string, log *slog.Logger) ([]siteLink, error) {
	var out []siteLink
	seen := map[string]bool{}
	add := func(l siteLink) {
		if seen[l.URL] {
			return
		}
		seen[l.URL] = true
		out = append(out, l)
	}

	if source == LinksFromSummaries || source == LinksFromBoth {
		for i := len(posts) - 1; i >= 0; i-- {
			p := posts[i]
			for _, ml := range p.Links {
				title := ml.Title
				if strings.HasPrefix(title, "http") || title == ml.URL {
					title = links.Title(ml.URL)
				}
				add(siteLink{URL: ml.URL, Title: title, Domain: links.DomainOf(ml.URL), Date: p.End})
			}
		}
	}

	if source == LinksFromRegistry || source == LinksFromBoth {
		recs, err := links.Load(registry)
		if err != nil {
			return nil, err
		}
		if recs == nil {
			log.Warn("link registry not found", "path", registry)
		}
		for _, r := range recs {
			d, _ := civil.Parse(r.Date)
			title := r.Title
			if title == "" {
				title = r.Domain
			}
			add(siteLink{URL: r.URL, Title: title, Domain: r.Domain, Date: d, SharedBy: r.SharedBy})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}
