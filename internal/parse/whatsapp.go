package parse

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
)

const maxLineSize = 10 * 1024 * 1024

// period matches the Brazilian "da tarde" style suffix or an AM/PM marker.
// Newer exports put a narrow no-break space before AM/PM.
const period = `(?:[\s\x{a0}\x{202f}]+(?:da\s+)?(madrugada|manhã|tarde|noite|meio-dia)|[\s\x{a0}\x{202f}]*([AaPp])\.?\s?[Mm]\.?)?`

var (
	// 05/01/2026 09:15 - Ana: oi
	// 5/1/26, 9:15 PM - Ana: oi
	// 05/01/2026 9:15 da tarde - Ana: oi
	androidHeader = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4}|\d{2}),?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?` + period + `\s+-\s(.*)$`)

	// [05/01/2026, 09:15:33] Ana: oi
	iosHeader = regexp.MustCompile(`^\x{200e}?\[(\d{1,2})/(\d{1,2})/(\d{4}|\d{2}),?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?` + period + `\]\s(.*)$`)
)

// Parse reads a transcript and returns its messages in source order.
// Lines without a header continue the previous message. The first non-empty
// line must carry a timestamp.
func Parse(r io.Reader) ([]Message, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var msgs []Message
	var cur *Message
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if m, ok := parseHeader(line); ok {
			m.LineNumber = lineNum
			msgs = append(msgs, m)
			cur = &msgs[len(msgs)-1]
			continue
		}

		if cur == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, apperr.Parse(fmt.Sprintf("line %d: transcript does not start with a timestamped message: %q", lineNum, truncate(line, 60)), nil)
		}
		cur.Body += "\n" + line
		cur.Lines = append(cur.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.Parse("read transcript", err)
	}
	if len(msgs) == 0 {
		return nil, apperr.Parse("transcript is empty", nil)
	}
	return msgs, nil
}

func ParseString(text string) ([]Message, error) {
	return Parse(strings.NewReader(text))
}

// IsHeader reports whether line starts a new message.
func IsHeader(line string) bool {
	_, ok := parseHeader(line)
	return ok
}

func parseHeader(line string) (Message, bool) {
	m := androidHeader.FindStringSubmatch(line)
	if m == nil {
		m = iosHeader.FindStringSubmatch(line)
		if m == nil {
			return Message{}, false
		}
	}

	ts, ok := buildTimestamp(m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
	if !ok {
		return Message{}, false
	}

	msg := Message{Timestamp: ts, Lines: []string{line}}
	rest := strings.TrimPrefix(m[9], "\u200e")
	if sender, body, ok := splitSender(rest); ok {
		msg.Sender = sender
		msg.Body = strings.TrimPrefix(body, "\u200e")
	} else {
		msg.System = true
		msg.Body = rest
	}
	return msg, true
}

func splitSender(rest string) (sender, body string, ok bool) {
	switch i := strings.Index(rest, ": "); {
	case i > 0:
		sender, body = strings.TrimSpace(rest[:i]), rest[i+2:]
	case strings.HasSuffix(rest, ":") && len(rest) > 1:
		sender = strings.TrimSpace(rest[:len(rest)-1])
	default:
		return "", "", false
	}
	if !plausibleSender(sender) {
		return "", "", false
	}
	return sender, body, true
}

// noticeVerbs appear in group notices such as `Ana criou o grupo "IA: x"`,
// whose text may itself contain ": ".
var noticeVerbs = map[string]bool{
	"criou": true, "adicionou": true, "removeu": true, "saiu": true,
	"entrou": true, "mudou": true, "alterou": true, "apagou": true,
	"fixou": true, "desafixou": true, "promoveu": true,
	"created": true, "added": true, "removed": true, "left": true,
	"joined": true, "changed": true, "deleted": true, "pinned": true,
}

// plausibleSender rejects sender candidates that quote text or read like a
// notice sentence. Contact names never contain quotes.
func plausibleSender(s string) bool {
	if s == "" || strings.ContainsAny(s, "\"\u201c\u201d") {
		return false
	}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if noticeVerbs[w] {
			return false
		}
	}
	return true
}

func buildTimestamp(day, month, year, hour, minute, second, brPeriod, ampm string) (time.Time, bool) {
	d, _ := strconv.Atoi(day)
	mo, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	h, _ := strconv.Atoi(hour)
	mi, _ := strconv.Atoi(minute)
	s := 0
	if second != "" {
		s, _ = strconv.Atoi(second)
	}
	if len(year) == 2 {
		y += 2000
	}

	switch {
	case brPeriod == "tarde" || brPeriod == "noite":
		if h != 12 {
			h += 12
		}
	case brPeriod == "madrugada":
		if h == 12 {
			h = 0
		}
	case ampm != "":
		pm := ampm == "p" || ampm == "P"
		if h < 1 || h > 12 {
			return time.Time{}, false
		}
		if pm && h != 12 {
			h += 12
		} else if !pm && h == 12 {
			h = 0
		}
	}

	if h > 23 || mi > 59 || s > 59 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, h, mi, s, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo {
		return time.Time{}, false
	}
	return t, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
