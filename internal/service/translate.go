package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

const translationCacheTTL = 7 * 24 * time.Hour

// TranslationService calls the external translation collaborator. Failures
// never abort an analysis: callers treat any error as "no translation
// available" and fall through to the next cascade tier. Successful
// translations are cached in Redis across runs when a client is configured.
type TranslationService struct {
	apiURL string
	client *http.Client
	redis  *redis.Client
}

// NewTranslationService creates a translation client with a bounded request
// timeout. redisClient may be nil; caching is then disabled.
func NewTranslationService(apiURL string, timeout time.Duration, redisClient *redis.Client) *TranslationService {
	return &TranslationService{
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
		redis:  redisClient,
	}
}

type translateRequest struct {
	Text string `json:"text"`
}

type translateResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage string `json:"detectedLanguage"`
	OriginalText     string `json:"originalText"`
}

// Translate sends the text to the collaborator and returns its translation.
func (s *TranslationService) Translate(ctx context.Context, text string) (*types.Translation, error) {
	if s.apiURL == "" {
		return nil, fmt.Errorf("translation service not configured")
	}

	cacheKey := "translation:" + strings.ToLower(strings.TrimSpace(text))
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var t types.Translation
			if err := json.Unmarshal([]byte(cached), &t); err == nil {
				return &t, nil
			}
		}
	}

	body, err := json.Marshal(translateRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("translation service returned %d: %s", resp.StatusCode, string(raw))
	}

	var payload translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("malformed translation response: %w", err)
	}
	if payload.TranslatedText == "" {
		return nil, fmt.Errorf("translation response missing translatedText")
	}

	translation := &types.Translation{
		OriginalText:     text,
		TranslatedText:   payload.TranslatedText,
		DetectedLanguage: payload.DetectedLanguage,
	}

	if s.redis != nil {
		if data, err := json.Marshal(translation); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, translationCacheTTL).Err(); err != nil {
				log.Printf("translation cache write failed: %v", err)
			}
		}
	}

	return translation, nil
}
