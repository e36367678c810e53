package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateSuccess(t *testing.T) {
	var gotBody translateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{
			"translatedText":   "iron",
			"detectedLanguage": "sv",
			"originalText":     "järn",
		})
	}))
	defer srv.Close()

	s := NewTranslationService(srv.URL, 5*time.Second, nil)

	translation, err := s.Translate(context.Background(), "järn")
	require.NoError(t, err)
	assert.Equal(t, "järn", gotBody.Text)
	assert.Equal(t, "järn", translation.OriginalText)
	assert.Equal(t, "iron", translation.TranslatedText)
	assert.Equal(t, "sv", translation.DetectedLanguage)
}

func TestTranslateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewTranslationService(srv.URL, 5*time.Second, nil)

	_, err := s.Translate(context.Background(), "järn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestTranslateEmptyTranslatedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"detectedLanguage": "sv"})
	}))
	defer srv.Close()

	s := NewTranslationService(srv.URL, 5*time.Second, nil)

	_, err := s.Translate(context.Background(), "järn")
	assert.Error(t, err)
}

func TestTranslateMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	s := NewTranslationService(srv.URL, 5*time.Second, nil)

	_, err := s.Translate(context.Background(), "järn")
	assert.Error(t, err)
}

func TestTranslateUnconfigured(t *testing.T) {
	s := NewTranslationService("", 5*time.Second, nil)

	_, err := s.Translate(context.Background(), "järn")
	assert.Error(t, err)
}

func TestTranslateContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	s := NewTranslationService(srv.URL, 5*time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Translate(ctx, "järn")
	assert.Error(t, err)
}
