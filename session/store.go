// Package session persists and validates the cookie-backed MealPal
// session so the user is not prompted for credentials on every run.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
)

// Store reads and writes the session cookies for one service origin.
type Store struct {
	path   string
	origin *url.URL
}

// NewStore binds a store to a cookie file and the origin the cookies
// are scoped to.
func NewStore(path, baseURL string) (*Store, error) {
	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Store{path: path, origin: origin}, nil
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Load reads the cookie file into a fresh jar. The boolean reports
// whether a stored session was actually restored; a missing or
// malformed file yields an empty jar and false, never an error the
// caller must handle apart from jar construction itself. Callers use
// the flag to skip liveness probing when there is nothing to probe.
func (s *Store) Load() (http.CookieJar, bool, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return jar, false, nil
	}
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return jar, false, nil
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	jar.SetCookies(s.origin, cookies)
	return jar, len(cookies) > 0, nil
}

// Save overwrites the cookie file with the jar's cookies for the bound
// origin. The write is atomic so a crash never leaves a torn file.
func (s *Store) Save(jar http.CookieJar) error {
	if jar == nil {
		return errors.New("session: nil jar")
	}
	stored := make([]storedCookie, 0)
	for _, c := range jar.Cookies(s.origin) {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
