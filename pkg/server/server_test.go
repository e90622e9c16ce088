package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/lector/pkg/chat"
	"github.com/kadirpekel/lector/pkg/config"
	"github.com/kadirpekel/lector/pkg/llms"
	"github.com/kadirpekel/lector/pkg/rag"
	"github.com/kadirpekel/lector/pkg/vector"
)

type cannedLLM struct {
	answer string
}

func (c *cannedLLM) GenerateStreaming(ctx context.Context, messages []llms.Message, defs []llms.ToolDefinition) (<-chan llms.StreamChunk, error) {
	ch := make(chan llms.StreamChunk, 2)
	ch <- llms.StreamChunk{Type: llms.ChunkTypeText, Text: c.answer}
	ch <- llms.StreamChunk{Type: llms.ChunkTypeDone, FinishReason: "stop"}
	close(ch)
	return ch, nil
}

func (c *cannedLLM) ModelName() string { return "gpt-4o-mini" }
func (c *cannedLLM) Close() error      { return nil }

type flatEmbedder struct{}

func (flatEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 4)
	for i, r := range text {
		vec[i%4] += float32(r % 7)
	}
	vec[0]++
	return vec, nil
}

func (e flatEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func (flatEmbedder) Dimension() int { return 4 }
func (flatEmbedder) Model() string  { return "flat" }
func (flatEmbedder) Close() error   { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	provider, err := vector.NewChromemProvider(vector.ChromemConfig{})
	require.NoError(t, err)

	uploads := rag.NewUploadIndexBuilder(provider, flatEmbedder{}, rag.UploadBuilderConfig{
		TempDir: t.TempDir(),
	})

	factory := func(id string) (*chat.Session, error) {
		return chat.NewSession(id, &cannedLLM{answer: "canned reply"}, nil, uploads, config.SessionConfig{}, nil)
	}

	srv := New(config.ServerConfig{}, factory, nil)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.ID)
	return body.ID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMessageFlow_JSON(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	resp, err := http.Post(
		fmt.Sprintf("%s/v1/sessions/%s/messages", ts.URL, id),
		"application/json",
		strings.NewReader(`{"message":"hello"}`),
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	body := buf.String()

	assert.Contains(t, body, "event: answer")
	assert.Contains(t, body, "canned reply")
}

func TestMessageFlow_MultipartWithFile(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	require.NoError(t, writer.WriteField("message", "summarize the upload"))
	part, err := writer.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("the project deadline moved to friday"))
	require.NoError(t, err)
	writer.Close()

	resp, err := http.Post(
		fmt.Sprintf("%s/v1/sessions/%s/messages", ts.URL, id),
		writer.FormDataContentType(),
		&form,
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	body := buf.String()

	// Upload indexing emits a status event before the model runs.
	assert.Contains(t, body, "Indexing uploaded files")
	assert.Contains(t, body, "canned reply")
}

func TestMessageFlow_SkippedFileSurfacedInStream(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	require.NoError(t, writer.WriteField("message", "read my files"))

	good, err := writer.CreateFormFile("files", "good.txt")
	require.NoError(t, err)
	_, err = good.Write([]byte("a perfectly readable document"))
	require.NoError(t, err)

	broken, err := writer.CreateFormFile("files", "broken.pdf")
	require.NoError(t, err)
	_, err = broken.Write([]byte("not really a pdf"))
	require.NoError(t, err)
	writer.Close()

	resp, err := http.Post(
		fmt.Sprintf("%s/v1/sessions/%s/messages", ts.URL, id),
		writer.FormDataContentType(),
		&form,
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	body := buf.String()

	assert.Contains(t, body, "Skipped broken.pdf", "unreadable upload must be reported in the stream")
	assert.Contains(t, body, "canned reply")
}

func TestMessage_UnknownSession(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(
		ts.URL+"/v1/sessions/nope/messages",
		"application/json",
		strings.NewReader(`{"message":"hello"}`),
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMessage_EmptyMessage(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	resp, err := http.Post(
		fmt.Sprintf("%s/v1/sessions/%s/messages", ts.URL, id),
		"application/json",
		strings.NewReader(`{"message":""}`),
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
