package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenAIEmbedder_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIEmbedder(OpenAIConfig{}); err == nil {
		t.Fatal("NewOpenAIEmbedder() expected error without API key")
	}
}

func TestNewOpenAIEmbedder_Defaults(t *testing.T) {
	e, err := NewOpenAIEmbedder(OpenAIConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder() error = %v", err)
	}
	if e.Model() != "text-embedding-3-small" {
		t.Errorf("Model() = %s, want text-embedding-3-small", e.Model())
	}
	if e.Dimension() != 1536 {
		t.Errorf("Dimension() = %d, want 1536", e.Dimension())
	}
}

func TestNewOpenAIEmbedder_LargeModelDimension(t *testing.T) {
	e, err := NewOpenAIEmbedder(OpenAIConfig{APIKey: "test-key", Model: "text-embedding-3-large"})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder() error = %v", err)
	}
	if e.Dimension() != 3072 {
		t.Errorf("Dimension() = %d, want 3072", e.Dimension())
	}
}

func TestOpenAIEmbedder_EmbedBatch(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		resp := map[string]any{"data": []map[string]any{}}
		data := resp["data"].([]map[string]any)
		// Return items reversed to exercise index-based reordering.
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"embedding": []float32{float32(i), float32(i)},
				"index":     i,
			})
		}
		resp["data"] = data
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder() error = %v", err)
	}

	vecs, err := e.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization header = %s, want Bearer test-key", gotAuth)
	}
	if len(vecs) != 2 {
		t.Fatalf("EmbedBatch() returned %d vectors, want 2", len(vecs))
	}
	if vecs[0][0] != 0 || vecs[1][0] != 1 {
		t.Errorf("EmbedBatch() vectors out of input order: %v", vecs)
	}
}

func TestOpenAIEmbedder_EmbedBatchEmpty(t *testing.T) {
	e, err := NewOpenAIEmbedder(OpenAIConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder() error = %v", err)
	}
	vecs, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Errorf("EmbedBatch(nil) error = %v", err)
	}
	if vecs != nil {
		t.Errorf("EmbedBatch(nil) = %v, want nil", vecs)
	}
}

func TestOpenAIEmbedder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(OpenAIConfig{APIKey: "bad", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder() error = %v", err)
	}

	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("Embed() expected error for HTTP 401")
	}
}
