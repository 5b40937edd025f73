// Package stats counts who talks, when, and about what.
package stats

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/wa-digest/internal/parse"
)

const (
	DefaultTop = 20
	minWordLen = 3
	topHours   = 5
)

var (
	urlRe     = regexp.MustCompile(`https?://\S+`)
	mentionRe = regexp.MustCompile(`@\S+`)
	wordRe    = regexp.MustCompile(`\p{L}+`)
	plainWord = regexp.MustCompile(`^[a-záàâãéèêíïóôõöúçñ]+$`)
)

var stopwords = toSet(
	"de", "a", "o", "que", "e", "do", "da", "em", "um", "para",
	"é", "com", "não", "uma", "os", "no", "se", "na", "por", "mais",
	"as", "dos", "como", "mas", "foi", "ao", "ele", "das", "tem", "à",
	"seu", "sua", "ou", "ser", "quando", "muito", "há", "nos", "já",
	"está", "eu", "também", "só", "pelo", "pela", "até", "isso",
	"ela", "entre", "era", "depois", "sem", "mesmo", "aos", "ter",
	"seus", "quem", "nas", "me", "esse", "eles", "estão", "você",
	"tinha", "foram", "essa", "num", "nem", "suas", "meu", "às",
	"minha", "têm", "numa", "pelos", "elas", "havia", "seja", "qual",
	"será", "nós", "tenho", "lhe", "deles", "essas", "esses", "pelas",
	"este", "fosse", "dele", "tu", "te", "vocês", "vos", "lhes",
	"meus", "minhas", "teu", "tua", "teus", "tuas", "nosso", "nossa",
	"nossos", "nossas", "dela", "delas", "esta", "estes", "estas",
	"aquele", "aquela", "aqueles", "aquelas", "isto", "aquilo",
	"estou", "estamos", "estive", "esteve",
	"pra", "pro", "tb", "tbm", "vc", "q", "n", "to", "ta", "tá",
	// media placeholders
	"imagem", "ocultada", "figurinha", "omitida", "áudio", "vídeo",
	"mídia", "oculta",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type Stats struct {
	TotalMessages     int            `json:"total_messages"`
	TotalParticipants int            `json:"total_participants"`
	ByAuthor          map[string]int `json:"by_author"`
	ByHour            map[int]int    `json:"by_hour"`
	TopWords          []WordCount    `json:"top_words"`
}

// Compute ignores system notices. top <= 0 means DefaultTop.
func Compute(msgs []parse.Message, top int) Stats {
	if top <= 0 {
		top = DefaultTop
	}
	s := Stats{ByAuthor: map[string]int{}, ByHour: map[int]int{}}
	words := map[string]int{}
	for _, m := range msgs {
		if m.System {
			continue
		}
		s.TotalMessages++
		s.ByAuthor[m.Sender]++
		s.ByHour[m.Timestamp.Hour()]++

		body := strings.ToLower(m.Body)
		body = urlRe.ReplaceAllString(body, "")
		body = mentionRe.ReplaceAllString(body, "")
		for _, w := range wordRe.FindAllString(body, -1) {
			if utf8.RuneCountInString(w) < minWordLen || !plainWord.MatchString(w) || stopwords[w] {
				continue
			}
			words[w]++
		}
	}
	s.TotalParticipants = len(s.ByAuthor)
	s.TopWords = topN(words, top)
	return s
}

func topN(counts map[string]int, n int) []WordCount {
	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{w, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Ranked is a labelled count in a sorted listing.
type Ranked struct {
	Label string
	Count int
}

func sortRanked(out []Ranked) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
}

// Authors returns participants by message count, busiest first.
func (s Stats) Authors() []Ranked {
	out := make([]Ranked, 0, len(s.ByAuthor))
	for a, c := range s.ByAuthor {
		out = append(out, Ranked{a, c})
	}
	sortRanked(out)
	return out
}

// BusiestHours returns up to n hours by message count.
func (s Stats) BusiestHours(n int) []Ranked {
	out := make([]Ranked, 0, len(s.ByHour))
	for h, c := range s.ByHour {
		out = append(out, Ranked{fmt.Sprintf("%02d:00", h), c})
	}
	sortRanked(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

var (
	styleTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	styleSection = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleCount   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// WriteText renders the report. Styling is applied only when color is set.
func WriteText(w io.Writer, s Stats, color bool) error {
	paint := func(st lipgloss.Style, v string) string {
		if !color {
			return v
		}
		return st.Render(v)
	}

	var b strings.Builder
	b.WriteString(paint(styleTitle, "=== Estatísticas do WhatsApp ===") + "\n\n")
	fmt.Fprintf(&b, "Total de mensagens: %s\n", paint(styleCount, fmt.Sprint(s.TotalMessages)))
	fmt.Fprintf(&b, "Participantes: %s\n\n", paint(styleCount, fmt.Sprint(s.TotalParticipants)))

	b.WriteString(paint(styleSection, "--- Mensagens por Participante ---") + "\n")
	for _, a := range s.Authors() {
		pct := 0.0
		if s.TotalMessages > 0 {
			pct = float64(a.Count) / float64(s.TotalMessages) * 100
		}
		fmt.Fprintf(&b, "  %s: %s %s\n", a.Label, paint(styleCount, fmt.Sprint(a.Count)), paint(styleDim, fmt.Sprintf("(%.1f%%)", pct)))
	}

	b.WriteString("\n" + paint(styleSection, "--- Horários Mais Ativos ---") + "\n")
	for _, h := range s.BusiestHours(topHours) {
		fmt.Fprintf(&b, "  %s - %d mensagens\n", h.Label, h.Count)
	}

	b.WriteString("\n" + paint(styleSection, "--- Palavras Mais Frequentes ---") + "\n")
	for _, wc := range s.TopWords {
		fmt.Fprintf(&b, "  %s: %d\n", wc.Word, wc.Count)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
