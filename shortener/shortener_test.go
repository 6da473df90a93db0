package shortener

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testShortener(baseURL string) *HTTPShortener {
	return &HTTPShortener{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Second},
		logger:  quietLogger(),
	}
}

func TestShortenReturnsShortURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req shortenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.URL != "https://app.example.com/resolutions/1" {
			t.Fatalf("unexpected url %q", req.URL)
		}
		json.NewEncoder(w).Encode(shortenResponse{ShortURL: "https://sho.rt/abc"})
	}))
	defer server.Close()

	got := testShortener(server.URL).Shorten(context.Background(), "https://app.example.com/resolutions/1")
	if got != "https://sho.rt/abc" {
		t.Fatalf("expected short url, got %q", got)
	}
}

func TestShortenDegradesToLongURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	long := "https://app.example.com/resolutions/1"
	if got := testShortener(server.URL).Shorten(context.Background(), long); got != long {
		t.Fatalf("a failing shortener must fall back to the long url, got %q", got)
	}

	if got := testShortener("").Shorten(context.Background(), long); got != long {
		t.Fatalf("unconfigured shortener must pass through, got %q", got)
	}

	local := "http://localhost:3000/resolutions/1"
	if got := testShortener(server.URL).Shorten(context.Background(), local); got != local {
		t.Fatalf("localhost links must pass through, got %q", got)
	}
}
