package ai_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bragforgood-api/ai"
)

// modelServer answers every generateContent call with answer as the model text.
func modelServer(t *testing.T, status int, answer string) (*httptest.Server, *[]ai.GeminiRequest) {
	t.Helper()
	var seen []ai.GeminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)

		var req ai.GeminiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req)

		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ai.GeminiResponse{
			Candidates: []ai.GeminiCandidate{{
				Content: ai.GeminiContent{Parts: []ai.GeminiPart{{Text: answer}}},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newClient(baseURL string) *ai.Client {
	return ai.NewClient(ai.Options{APIKey: "secret", BaseURL: baseURL, Model: "test-model", Timeout: time.Second})
}

func TestReview_Approved(t *testing.T) {
	srv, seen := modelServer(t, http.StatusOK, `{"approved": true, "reason": ""}`)

	v, err := newClient(srv.URL).Review(context.Background(), ai.Content{Kind: ai.KindDeed, Title: "Beach cleanup", Body: "Picked up 3 bags of plastic"})

	require.NoError(t, err)
	assert.True(t, v.Approved)
	require.Len(t, *seen, 1)
	assert.Contains(t, (*seen)[0].Contents[0].Parts[0].Text, "Beach cleanup")
}

func TestReview_RejectedWithFencedAnswer(t *testing.T) {
	srv, _ := modelServer(t, http.StatusOK, "```json\n{\"approved\": false, \"reason\": \"Advertising is not allowed\"}\n```")

	v, err := newClient(srv.URL).Review(context.Background(), ai.Content{Kind: ai.KindComment, Body: "buy my stuff"})

	require.NoError(t, err)
	assert.False(t, v.Approved)
	assert.Equal(t, "Advertising is not allowed", v.Reason)
}

func TestReview_RejectedWithoutReasonGetsDefault(t *testing.T) {
	srv, _ := modelServer(t, http.StatusOK, `{"approved": false}`)

	v, err := newClient(srv.URL).Review(context.Background(), ai.Content{Kind: ai.KindComment, Body: "..."})

	require.NoError(t, err)
	assert.False(t, v.Approved)
	assert.NotEmpty(t, v.Reason)
}

func TestReview_Errors(t *testing.T) {
	t.Run("upstream status", func(t *testing.T) {
		srv, _ := modelServer(t, http.StatusInternalServerError, `{}`)
		_, err := newClient(srv.URL).Review(context.Background(), ai.Content{Body: "x"})
		assert.Error(t, err)
	})

	t.Run("garbage answer", func(t *testing.T) {
		srv, _ := modelServer(t, http.StatusOK, "I think this is fine!")
		_, err := newClient(srv.URL).Review(context.Background(), ai.Content{Body: "x"})
		assert.Error(t, err)
	})

	t.Run("no api key", func(t *testing.T) {
		c := ai.NewClient(ai.Options{BaseURL: "http://127.0.0.1:1", Model: "m"})
		_, err := c.Review(context.Background(), ai.Content{Body: "x"})
		assert.ErrorIs(t, err, ai.ErrNotConfigured)
	})

	t.Run("timeout", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer slow.Close()

		c := ai.NewClient(ai.Options{APIKey: "secret", BaseURL: slow.URL, Model: "test-model", Timeout: 20 * time.Millisecond})
		_, err := c.Review(context.Background(), ai.Content{Body: "x"})
		assert.Error(t, err)
	})
}

func TestFailClosed(t *testing.T) {
	t.Run("unreachable service rejects", func(t *testing.T) {
		srv, _ := modelServer(t, http.StatusBadGateway, `{}`)
		m := ai.FailClosed(newClient(srv.URL))

		v, err := m.Review(context.Background(), ai.Content{Kind: ai.KindDeed, Body: "x"})

		require.NoError(t, err)
		assert.False(t, v.Approved)
		assert.Equal(t, ai.UnavailableReason, v.Reason)
	})

	t.Run("missing configuration rejects", func(t *testing.T) {
		m := ai.FailClosed(ai.NewClient(ai.Options{}))

		v, err := m.Review(context.Background(), ai.Content{Kind: ai.KindComment, Body: "x"})

		require.NoError(t, err)
		assert.False(t, v.Approved)
	})

	t.Run("verdicts pass through", func(t *testing.T) {
		srv, _ := modelServer(t, http.StatusOK, `{"approved": true}`)
		m := ai.FailClosed(newClient(srv.URL))

		v, err := m.Review(context.Background(), ai.Content{Kind: ai.KindDeed, Body: "x"})

		require.NoError(t, err)
		assert.True(t, v.Approved)
	})
}

func TestFailClosed_DoesNotLogAPIKey(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	// Nothing listens on port 1.
	c := ai.NewClient(ai.Options{APIKey: "SUPERSECRETKEY123", BaseURL: "http://127.0.0.1:1", Model: "m", Timeout: time.Second})

	v, err := ai.FailClosed(c).Review(context.Background(), ai.Content{Kind: ai.KindDeed, Body: "x"})
	require.NoError(t, err)
	assert.False(t, v.Approved)

	_, err = c.Translate(context.Background(), "t", "d", "fr")
	require.Error(t, err)

	assert.Contains(t, buf.String(), "127.0.0.1:1")
	assert.NotContains(t, buf.String(), "SUPERSECRETKEY123")
	assert.NotContains(t, err.Error(), "SUPERSECRETKEY123")
}

func TestTranslate(t *testing.T) {
	srv, seen := modelServer(t, http.StatusOK, `{"title": "Nettoyage de plage", "description": "Trois sacs de plastique"}`)

	tr, err := newClient(srv.URL).Translate(context.Background(), "Beach cleanup", "Three bags of plastic", "fr")

	require.NoError(t, err)
	assert.Equal(t, "Nettoyage de plage", tr.Title)
	assert.Equal(t, "Trois sacs de plastique", tr.Description)
	assert.Equal(t, "fr", tr.Lang)
	assert.Contains(t, (*seen)[0].Contents[0].Parts[0].Text, `"fr"`)
}
