package links

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var (
	fileExt  = regexp.MustCompile(`\.[a-z]+$`)
	slugSeps = regexp.MustCompile(`[-_]`)
)

// Title derives a readable label from a URL for links that have not been
// enriched yet.
func Title(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	domain := Domain(u.Host)
	p := strings.Trim(u.Path, "/")
	parts := strings.Split(p, "/")

	switch {
	case strings.Contains(domain, "linkedin.com"):
		switch {
		case strings.Contains("/"+p, "/in/"):
			name := strings.SplitN(afterLast(p, "in/"), "/", 2)[0]
			return "LinkedIn - " + titleCase(strings.ReplaceAll(name, "-", " "))
		case strings.Contains(p, "posts/") || strings.Contains(p, "feed/"):
			return "LinkedIn - Post"
		case strings.Contains("/"+p, "/company/"):
			company := strings.SplitN(afterLast(p, "company/"), "/", 2)[0]
			return "LinkedIn - " + titleCase(strings.ReplaceAll(company, "-", " "))
		}
	case strings.Contains(domain, "youtube.com") || strings.Contains(domain, "youtu.be"):
		return "YouTube - Vídeo"
	case strings.Contains(domain, "instagram.com"):
		if p != "" {
			return "Instagram - @" + parts[0]
		}
		return "Instagram"
	case strings.Contains(domain, "twitter.com") || domain == "x.com":
		if p != "" {
			return "X/Twitter - @" + parts[0]
		}
		return "X/Twitter"
	case strings.Contains(domain, "docs.google.com"):
		switch {
		case strings.Contains(p, "document/"):
			return "Google Docs - Documento"
		case strings.Contains(p, "spreadsheets/"):
			return "Google Sheets - Planilha"
		case strings.Contains(p, "presentation/"):
			return "Google Slides - Apresentação"
		}
		return "Google Docs"
	case strings.Contains(domain, "open.spotify.com"):
		switch {
		case strings.Contains(p, "episode/"):
			return "Spotify - Podcast"
		case strings.Contains(p, "track/"):
			return "Spotify - Música"
		case strings.Contains(p, "playlist/"):
			return "Spotify - Playlist"
		}
		return "Spotify"
	case strings.Contains(domain, "github.com"):
		if len(parts) >= 2 {
			return "GitHub - " + parts[0] + "/" + parts[1]
		}
		return "GitHub"
	case strings.Contains(domain, "medium.com"):
		return "Medium - Artigo"
	case strings.Contains(domain, "amazon.com"):
		return "Amazon - Produto"
	}

	site := titleCase(strings.SplitN(domain, ".", 2)[0])
	if p != "" {
		slug := slugSeps.ReplaceAllString(fileExt.ReplaceAllString(parts[len(parts)-1], ""), " ")
		if n := len([]rune(slug)); n > 5 && n < 80 {
			return site + " - " + truncateRunes(slug, 60)
		}
	}
	return site
}

func afterLast(s, sep string) string {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
