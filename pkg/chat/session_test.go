package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/lector/pkg/config"
	"github.com/kadirpekel/lector/pkg/llms"
	"github.com/kadirpekel/lector/pkg/rag"
	"github.com/kadirpekel/lector/pkg/vector"
)

// replayLLM returns one scripted chunk sequence per call, repeating the
// last script when calls outnumber scripts.
type replayLLM struct {
	scripts  [][]llms.StreamChunk
	calls    int
	messages [][]llms.Message
}

func (r *replayLLM) GenerateStreaming(ctx context.Context, messages []llms.Message, defs []llms.ToolDefinition) (<-chan llms.StreamChunk, error) {
	r.messages = append(r.messages, messages)

	var script []llms.StreamChunk
	if r.calls < len(r.scripts) {
		script = r.scripts[r.calls]
	} else if len(r.scripts) > 0 {
		script = r.scripts[len(r.scripts)-1]
	}
	r.calls++

	ch := make(chan llms.StreamChunk, len(script))
	for _, chunk := range script {
		ch <- chunk
	}
	close(ch)
	return ch, nil
}

func (r *replayLLM) ModelName() string { return "gpt-4o-mini" }
func (r *replayLLM) Close() error      { return nil }

type countEmbedder struct{}

func (countEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	for i, r := range text {
		vec[i%8] += float32(r % 13)
	}
	vec[0]++
	return vec, nil
}

func (e countEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func (countEmbedder) Dimension() int { return 8 }
func (countEmbedder) Model() string  { return "count" }
func (countEmbedder) Close() error   { return nil }

func answerScript(text string) []llms.StreamChunk {
	return []llms.StreamChunk{
		{Type: llms.ChunkTypeText, Text: text},
		{Type: llms.ChunkTypeDone, FinishReason: "stop"},
	}
}

func newSessionFixture(t *testing.T, llm llms.LLM) *Session {
	t.Helper()
	provider, err := vector.NewChromemProvider(vector.ChromemConfig{})
	require.NoError(t, err)

	uploads := rag.NewUploadIndexBuilder(provider, countEmbedder{}, rag.UploadBuilderConfig{
		TempDir: t.TempDir(),
	})

	session, err := NewSession("test-session", llm, nil, uploads, config.SessionConfig{}, nil)
	require.NoError(t, err)
	return session
}

func TestSession_SuccessfulTurnAppendsHistory(t *testing.T) {
	llm := &replayLLM{scripts: [][]llms.StreamChunk{answerScript("hello there")}}
	session := newSessionFixture(t, llm)

	answer, err := session.ProcessMessage(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello there", answer)

	entries := session.History().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Role: RoleHuman, Text: "hi"}, entries[0])
	assert.Equal(t, Entry{Role: RoleAI, Text: "hello there"}, entries[1])
}

func TestSession_ErrorBoundaryKeepsSessionUsable(t *testing.T) {
	llm := &replayLLM{scripts: [][]llms.StreamChunk{
		{{Type: llms.ChunkTypeError, Error: errors.New("model offline")}},
		answerScript("recovered"),
	}}
	session := newSessionFixture(t, llm)
	ctx := context.Background()

	answer, err := session.ProcessMessage(ctx, "first", nil)
	require.Error(t, err)
	assert.NotEmpty(t, answer, "error turn must still return a user-visible message")
	assert.Equal(t, 0, session.History().Len())

	answer, err = session.ProcessMessage(ctx, "second", nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", answer)
	assert.Equal(t, 2, session.History().Len())
}

func TestSession_EmptyStreamFallbackSkipsHistory(t *testing.T) {
	llm := &replayLLM{scripts: [][]llms.StreamChunk{
		{{Type: llms.ChunkTypeDone, FinishReason: "stop"}},
	}}
	session := newSessionFixture(t, llm)

	answer, err := session.ProcessMessage(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackMessage, answer)
	assert.Equal(t, 0, session.History().Len())
}

func TestSession_UploadedFilesWireToolWithPriority(t *testing.T) {
	llm := &replayLLM{scripts: [][]llms.StreamChunk{answerScript("summarized")}}
	session := newSessionFixture(t, llm)

	_, err := session.ProcessMessage(context.Background(), "summarize my file", []rag.UploadedFile{
		{Name: "notes.txt", Content: []byte("quarterly revenue grew ten percent")},
	})
	require.NoError(t, err)

	assert.Contains(t, UploadToolDescription, "Prefer this tool")

	system := llm.messages[0][0]
	require.Equal(t, llms.RoleSystem, system.Role)
	assert.Contains(t, system.Content, UploadToolName)
	assert.Contains(t, system.Content, "Prefer the "+UploadToolName)
}

func TestSession_SkippedUploadsReportedToUser(t *testing.T) {
	llm := &replayLLM{scripts: [][]llms.StreamChunk{answerScript("noted")}}
	session := newSessionFixture(t, llm)

	var statuses []string
	answer, err := session.ProcessMessageWithStatus(context.Background(), "read these",
		[]rag.UploadedFile{
			{Name: "good.txt", Content: []byte("the cafeteria closes at six")},
			{Name: "broken.pdf", Content: []byte("not a pdf")},
		},
		func(status string) { statuses = append(statuses, status) })
	require.NoError(t, err)
	assert.Equal(t, "noted", answer)

	var skipNotices []string
	for _, status := range statuses {
		if strings.HasPrefix(status, "Skipped") {
			skipNotices = append(skipNotices, status)
		}
	}
	require.Len(t, skipNotices, 1)
	assert.Contains(t, skipNotices[0], "broken.pdf")
}

func TestSession_AllUploadsFailingIsError(t *testing.T) {
	llm := &replayLLM{scripts: [][]llms.StreamChunk{answerScript("unused")}}
	session := newSessionFixture(t, llm)

	_, err := session.ProcessMessage(context.Background(), "read this", []rag.UploadedFile{
		{Name: "broken.pdf", Content: []byte("not a pdf")},
	})
	var emptyErr *rag.EmptyContentError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, 0, session.History().Len())
}
