package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

// SemanticService calls the external semantic-search collaborator (the
// embedding-based novel food search API). Its absence or failure is a
// recoverable signal; the cascade falls back to local fuzzy search.
type SemanticService struct {
	apiURL string
	client *http.Client
}

func NewSemanticService(apiURL string, timeout time.Duration) *SemanticService {
	return &SemanticService{
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
	}
}

type semanticRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type semanticResponse struct {
	Results []struct {
		PolicyItemID string  `json:"policy_item_id"`
		Canonical    string  `json:"canonical"`
		MatchedText  string  `json:"matched_text"`
		Confidence   float64 `json:"confidence"`
	} `json:"results"`
}

// Search returns ranked novel-food candidates for the query, confidence
// 0-100 descending.
func (s *SemanticService) Search(ctx context.Context, query string, topK int) ([]types.FuzzyCandidate, error) {
	if s.apiURL == "" {
		return nil, fmt.Errorf("semantic search not configured")
	}

	body, err := json.Marshal(semanticRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("semantic search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("semantic search returned %d: %s", resp.StatusCode, string(raw))
	}

	var payload semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("malformed semantic search response: %w", err)
	}

	candidates := make([]types.FuzzyCandidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		name := r.Canonical
		if name == "" {
			name = r.MatchedText
		}
		if name == "" {
			continue
		}
		candidates = append(candidates, types.FuzzyCandidate{
			Dataset:     types.DatasetNovelFood,
			EntryID:     r.PolicyItemID,
			EntryName:   name,
			MatchedText: r.MatchedText,
			Confidence:  int(r.Confidence + 0.5),
		})
	}
	return candidates, nil
}
