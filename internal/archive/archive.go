// Package archive reads WhatsApp chat exports, either the ZIP produced by the
// app or a bare transcript file.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
)

// Transcript is the decoded chat text plus where it came from.
type Transcript struct {
	Source   string // archive or file path
	Entry    string // entry name inside the archive, "" for plain files
	Encoding string
	Text     string
}

// zipMagic starts every local file header; an empty archive starts with the
// end-of-central-directory record instead.
var (
	zipMagic      = []byte("PK\x03\x04")
	emptyZipMagic = []byte("PK\x05\x06")
)

// Open loads the transcript at p. "-" reads stdin. Content starting with a
// ZIP signature is read as an archive whatever its extension; a .zip path
// without one is a corrupt archive.
func Open(p string) (*Transcript, error) {
	if p == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return decodeTranscript("-", "", data)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound(fmt.Sprintf("file %q not found", p), err)
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	if IsZip(data) || strings.EqualFold(filepath.Ext(p), ".zip") {
		return openZipData(p, data)
	}
	return decodeTranscript(p, "", data)
}

// IsZip reports whether data starts with a ZIP signature.
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic) || bytes.HasPrefix(data, emptyZipMagic)
}

func OpenZip(p string) (*Transcript, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound(fmt.Sprintf("archive %q not found", p), err)
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return openZipData(p, data)
}

// openZipData treats an unreadable archive like one without a transcript:
// both mean there is nothing to segment.
func openZipData(p string, data []byte) (*Transcript, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperr.NotFound(fmt.Sprintf("no transcript in %q: not a valid ZIP archive", p), err)
	}

	f := findTranscript(zr.File)
	if f == nil {
		return nil, apperr.NotFoundf("no .txt transcript inside %q", p)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, apperr.NotFound(fmt.Sprintf("open %s in %q", f.Name, p), err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperr.NotFound(fmt.Sprintf("read %s in %q", f.Name, p), err)
	}
	return decodeTranscript(p, f.Name, body)
}

// findTranscript prefers the names WhatsApp itself uses, then falls back to
// the first .txt entry in archive order.
func findTranscript(files []*zip.File) *zip.File {
	var first *zip.File
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		base := path.Base(f.Name)
		if strings.HasPrefix(base, "._") || !strings.EqualFold(path.Ext(base), ".txt") {
			continue
		}
		if base == "_chat.txt" || strings.HasPrefix(base, "WhatsApp Chat") || strings.HasPrefix(base, "Conversa do WhatsApp") {
			return f
		}
		if first == nil {
			first = f
		}
	}
	return first
}

func decodeTranscript(source, entry string, data []byte) (*Transcript, error) {
	text, enc, err := Decode(data)
	if err != nil {
		return nil, apperr.Parse(fmt.Sprintf("decode %s", source), err)
	}
	return &Transcript{Source: source, Entry: entry, Encoding: enc, Text: text}, nil
}

// Decode converts raw transcript bytes to a string. It honours UTF-8 and
// UTF-16 byte order marks, accepts plain UTF-8, and treats anything else as
// Latin-1, which never fails.
func Decode(data []byte) (text, encoding string, err error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		data = data[3:]
		if utf8.Valid(data) {
			return string(data), "utf-8-sig", nil
		}
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return "", "", fmt.Errorf("utf-16: %w", err)
		}
		return string(out), "utf-16", nil
	default:
		if utf8.Valid(data) {
			return string(data), "utf-8", nil
		}
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", fmt.Errorf("latin-1: %w", err)
	}
	return string(out), "latin-1", nil
}
