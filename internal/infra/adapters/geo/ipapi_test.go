package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(baseURL string) *Client {
	logger := zerolog.Nop()
	return NewClient(baseURL, 2*time.Second, &logger)
}

func TestClient_Resolve(t *testing.T) {
	t.Run("returns country and city on success", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/1.2.3.4/json/" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"country_name":"Greece","city":"Athens"}`))
		}))
		defer ts.Close()

		country, city := newTestClient(ts.URL).Resolve(context.Background(), "1.2.3.4")
		if country != "Greece" || city != "Athens" {
			t.Errorf("got (%q, %q), want (Greece, Athens)", country, city)
		}
	})

	t.Run("non-200 yields empty strings", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer ts.Close()

		country, city := newTestClient(ts.URL).Resolve(context.Background(), "1.2.3.4")
		if country != "" || city != "" {
			t.Errorf("expected empty result, got (%q, %q)", country, city)
		}
	})

	t.Run("malformed body yields empty strings", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer ts.Close()

		country, city := newTestClient(ts.URL).Resolve(context.Background(), "1.2.3.4")
		if country != "" || city != "" {
			t.Errorf("expected empty result, got (%q, %q)", country, city)
		}
	})

	t.Run("unreachable endpoint yields empty strings", func(t *testing.T) {
		country, city := newTestClient("http://127.0.0.1:1").Resolve(context.Background(), "1.2.3.4")
		if country != "" || city != "" {
			t.Errorf("expected empty result, got (%q, %q)", country, city)
		}
	})

	t.Run("empty ip short-circuits", func(t *testing.T) {
		country, city := newTestClient("http://127.0.0.1:1").Resolve(context.Background(), "")
		if country != "" || city != "" {
			t.Errorf("expected empty result, got (%q, %q)", country, city)
		}
	})
}
