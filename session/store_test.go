package session_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edmundmok/mealpy"
	"github.com/edmundmok/mealpy/session"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body any) *http.Response {
	buf, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(buf)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestLoadMissingFileYieldsEmptyJar(t *testing.T) {
	store, err := session.NewStore(filepath.Join(t.TempDir(), "cookies.json"), "https://mealpal.test")
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	jar, restored, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if restored {
		t.Fatalf("missing file must not count as a restored session")
	}
	origin, _ := url.Parse("https://mealpal.test")
	if got := jar.Cookies(origin); len(got) != 0 {
		t.Fatalf("expected empty jar, got %v", got)
	}
}

func TestLoadMalformedFileIsAbsentNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte("\xff\xfenot json"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	store, err := session.NewStore(path, "https://mealpal.test")
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	jar, restored, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if restored {
		t.Fatalf("malformed file must not count as a restored session")
	}
	origin, _ := url.Parse("https://mealpal.test")
	if got := jar.Cookies(origin); len(got) != 0 {
		t.Fatalf("expected empty jar, got %v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	store, err := session.NewStore(path, "https://mealpal.test")
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	jar, _, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	origin, _ := url.Parse("https://mealpal.test")
	jar.SetCookies(origin, []*http.Cookie{{Name: "sessionToken", Value: "r:abc123"}})

	if err := store.Save(jar); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	reloaded, restored, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !restored {
		t.Fatalf("saved session must count as restored on reload")
	}
	got := reloaded.Cookies(origin)
	if len(got) != 1 || got[0].Name != "sessionToken" || got[0].Value != "r:abc123" {
		t.Fatalf("unexpected cookies after round trip: %v", got)
	}
}

// A session captured from a login and persisted must validate against
// the same backend after a reload, without any re-login.
func TestRoundTripValidatesAgainstBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	store, err := session.NewStore(path, "https://mealpal.test")
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	backend := func(r *http.Request) (*http.Response, error) {
		switch r.URL.Path {
		case "/1/login":
			resp := jsonResponse(http.StatusOK, map[string]any{"status": "success"})
			resp.Header.Add("Set-Cookie", "sessionToken=r:abc123; Path=/")
			return resp, nil
		case "/1/functions/getCitiesWithNeighborhoods":
			return jsonResponse(http.StatusOK, map[string]any{
				"result": []map[string]string{{"objectId": "X", "name": "San Francisco"}},
			}), nil
		case "/api/v1/cities/X/product_offerings/lunch/menu":
			if c, err := r.Cookie("sessionToken"); err != nil || c.Value != "r:abc123" {
				return jsonResponse(http.StatusUnauthorized, map[string]any{"error": "no session"}), nil
			}
			return jsonResponse(http.StatusOK, map[string]any{"schedules": []any{}}), nil
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
			return nil, nil
		}
	}

	jar, _, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	client := mealpy.New(
		mealpy.WithBaseURL("https://mealpal.test"),
		mealpy.WithHTTPClient(&http.Client{Transport: roundTripFunc(backend), Jar: jar}),
	)
	if err := client.Login(context.Background(), "user@example.com", "hunter2"); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if err := store.Save(client.Jar()); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// Fresh process: reload the jar and validate without credentials.
	reloaded, restored, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !restored {
		t.Fatalf("expected the saved session to be restored")
	}
	fresh := mealpy.New(
		mealpy.WithBaseURL("https://mealpal.test"),
		mealpy.WithHTTPClient(&http.Client{Transport: roundTripFunc(backend), Jar: reloaded}),
	)
	ok := session.Validate(context.Background(), fresh, session.WithSleep(func(time.Duration) {}))
	if !ok {
		t.Fatalf("expected reloaded session to validate")
	}
}
