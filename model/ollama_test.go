package model

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embedServer(t *testing.T, vectors map[string][]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		resp := ollamaEmbedResponse{}
		for _, text := range req.Input {
			vec, ok := vectors[text]
			if !ok {
				t.Fatalf("no fixture vector for %q", text)
			}
			resp.Embeddings = append(resp.Embeddings, vec)
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbed_OrderPreserving(t *testing.T) {
	ts := embedServer(t, map[string][]float64{
		"a": {1, 0},
		"b": {0, 1},
	})
	defer ts.Close()

	e := NewOllamaEmbedder(ts.URL, "all-minilm")

	batch, err := e.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("batch embed failed: %v", err)
	}
	single, err := e.Embed(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("single embed failed: %v", err)
	}

	if len(batch) != 2 || len(single) != 1 {
		t.Fatalf("unexpected result counts: %d, %d", len(batch), len(single))
	}
	for i := range single[0] {
		if batch[0][i] != single[0][i] {
			t.Fatalf("encode([a,b])[0] != encode([a])[0] at dim %d", i)
		}
	}
	if batch[1][1] != 1 {
		t.Fatalf("batch order not preserved: %v", batch[1])
	}
}

func TestEmbed_NormalizesVectors(t *testing.T) {
	ts := embedServer(t, map[string][]float64{"x": {3, 4}})
	defer ts.Close()

	e := NewOllamaEmbedder(ts.URL, "all-minilm")
	out, err := e.Embed(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	var sum float64
	for _, v := range out[0] {
		sum += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
		t.Fatalf("expected unit-norm vector, got norm %f", math.Sqrt(sum))
	}
}

func TestEmbed_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer ts.Close()

	e := NewOllamaEmbedder(ts.URL, "missing")
	if _, err := e.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestEmbed_CountMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float64{{1}}})
	}))
	defer ts.Close()

	e := NewOllamaEmbedder(ts.URL, "all-minilm")
	if _, err := e.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error when embedding count does not match input count")
	}
}

func TestEmbed_EmptyBatch(t *testing.T) {
	e := NewOllamaEmbedder("http://unused", "all-minilm")
	out, err := e.Embed(context.Background(), nil)
	if err != nil || out != nil {
		t.Fatalf("empty batch should be a no-op, got %v, %v", out, err)
	}
}
