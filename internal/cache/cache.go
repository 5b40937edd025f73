// Package cache stores LLM summaries keyed by a hash of their inputs, so a
// rerun over the same week text costs nothing.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucket = []byte("summaries")

type Entry struct {
	Summary   string    `json:"summary"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// KeyParams are the request settings that change the response.
type KeyParams struct {
	Provider  string
	Model     string
	MaxTokens int
	Prompt    string // full prompt template and system prompt
}

// Key hashes the normalized text together with params. Line endings and
// surrounding whitespace do not affect the key.
func Key(text string, p KeyParams) string {
	norm := strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	promptSum := sha256.Sum256([]byte(p.Prompt))

	h := sha256.New()
	for _, part := range []string{
		norm,
		p.Provider,
		p.Model,
		strconv.Itoa(p.MaxTokens),
		hex.EncodeToString(promptSum[:]),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type Cache struct {
	db *bolt.DB
}

func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the entry for key. A malformed stored value counts as a miss.
func (c *Cache) Get(key string) (Entry, bool, error) {
	var e Entry
	found := false
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		if json.Unmarshal(v, &e) != nil {
			return nil
		}
		found = true
		return nil
	})
	return e, found, err
}

func (c *Cache) Put(key string, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	v, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), v)
	})
}

func (c *Cache) Len() (int, error) {
	n := 0
	err := c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucket).Stats().KeyN
		return nil
	})
	return n, err
}

func (c *Cache) Path() string {
	return c.db.Path()
}
