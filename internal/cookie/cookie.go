// Package cookie synthesizes a throwaway Netscape cookie jar for the
// downloader. The jar lives in a private temp directory, is written at most
// once per session, and is removed when the session closes.
package cookie

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"
)

const (
	// Domain is the cookie domain every entry is scoped to.
	Domain = ".youtube.com"

	// Lifetime is how long synthesized cookies claim to be valid.
	Lifetime = 365 * 24 * time.Hour

	visitorIDLength = 26
	yscLength       = 11

	visitorAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"
	yscAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
)

// Cookie is one line of the jar.
type Cookie struct {
	Name   string
	Value  string
	Expiry int64
}

// Jar owns a single cookie file.
type Jar struct {
	app  string
	now  func() time.Time
	rng  *rand.Rand
	dir  string
	path string
}

// Option configures a Jar.
type Option func(*Jar)

// WithClock overrides the creation clock.
func WithClock(now func() time.Time) Option {
	return func(j *Jar) { j.now = now }
}

// WithRand overrides the source used for identifier values.
func WithRand(r *rand.Rand) Option {
	return func(j *Jar) { j.rng = r }
}

// New returns a Jar. No file is written until Path is called.
func New(app string, opts ...Option) *Jar {
	j := &Jar{
		app: app,
		now: time.Now,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Path returns the cookie file path, writing the file on first use.
// Later calls return the cached path. If the file was removed behind the
// jar's back it is written again at the same location.
func (j *Jar) Path() (string, error) {
	if j.path != "" {
		if _, err := os.Stat(j.path); err == nil {
			return j.path, nil
		}
	}

	if j.dir == "" {
		dir, err := os.MkdirTemp("", "ytgrab-cookies-*")
		if err != nil {
			return "", fmt.Errorf("creating cookie temp dir: %w", err)
		}
		j.dir = dir
	}

	path := filepath.Join(j.dir, "cookies.txt")
	if err := j.write(path); err != nil {
		return "", err
	}
	j.path = path
	return path, nil
}

// Close removes the cookie file and its directory. It is safe to call more
// than once and before Path was ever called.
func (j *Jar) Close() error {
	if j.dir == "" {
		return nil
	}
	err := os.RemoveAll(j.dir)
	j.dir = ""
	j.path = ""
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing cookie jar: %w", err)
	}
	return nil
}

// Cookies generates a fresh set of cookie values relative to created.
func (j *Jar) Cookies(created time.Time) []Cookie {
	expiry := created.Add(Lifetime).Unix()
	return []Cookie{
		{"CONSENT", fmt.Sprintf("YES+cb.20230717-07-p0.en+FX+%d", 100+j.rng.IntN(900)), expiry},
		{"VISITOR_INFO1_LIVE", j.randomString(visitorAlphabet, visitorIDLength), expiry},
		{"PREF", "f6=8&f5=30&hl=en", expiry},
		{"YSC", j.randomString(yscAlphabet, yscLength), expiry},
		{"GPS", "1", expiry},
	}
}

func (j *Jar) write(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating cookie file: %w", err)
	}

	created := j.now()
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# Netscape HTTP Cookie File")
	fmt.Fprintf(w, "# Created by %s on %s\n\n", j.app, created.Format("2006-01-02"))
	for _, c := range j.Cookies(created) {
		fmt.Fprintln(w, FormatLine(c))
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing cookie file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing cookie file: %w", err)
	}
	return nil
}

// FormatLine renders a cookie in Netscape jar format:
// domain, include subdomains, path, secure, expiry, name, value.
func FormatLine(c Cookie) string {
	return fmt.Sprintf("%s\tTRUE\t/\tTRUE\t%d\t%s\t%s", Domain, c.Expiry, c.Name, c.Value)
}

func (j *Jar) randomString(alphabet string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[j.rng.IntN(len(alphabet))]
	}
	return string(b)
}
