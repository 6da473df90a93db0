package shortener

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bitbucket.org/flact/governance_backend/config"
)

// Shortener turns a long deep link into a short one. A failed shortening
// must never block a notification, so implementations degrade to the long
// URL instead of returning an error to the caller.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) string
}

// HTTPShortener talks to the link-shortening service configured via
// SHORTENER_URL. Localhost links are passed through untouched since the
// shortener cannot resolve them.
type HTTPShortener struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

func NewHTTPShortener(logger *logrus.Logger) *HTTPShortener {
	return &HTTPShortener{
		baseURL: strings.TrimRight(os.Getenv("SHORTENER_URL"), "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type shortenRequest struct {
	URL string `json:"url"`
}

type shortenResponse struct {
	ShortURL string `json:"shortUrl"`
}

func (s *HTTPShortener) Shorten(ctx context.Context, longURL string) string {
	if s.baseURL == "" || strings.Contains(longURL, "localhost") {
		return longURL
	}

	body, err := json.Marshal(shortenRequest{URL: longURL})
	if err != nil {
		return longURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/shorten", bytes.NewReader(body))
	if err != nil {
		return longURL
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		config.LogError(s.logger, "shortener", "Shorten", longURL, nil, err)
		return longURL
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		config.LogError(s.logger, "shortener", "Shorten", longURL, nil, errors.New(resp.Status))
		return longURL
	}

	var result shortenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.ShortURL == "" {
		config.LogError(s.logger, "shortener", "Shorten", longURL, nil, err)
		return longURL
	}
	return result.ShortURL
}
