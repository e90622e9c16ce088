package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/lector/pkg/agent"
	"github.com/kadirpekel/lector/pkg/config"
	"github.com/kadirpekel/lector/pkg/llms"
	"github.com/kadirpekel/lector/pkg/observability"
	"github.com/kadirpekel/lector/pkg/rag"
	"github.com/kadirpekel/lector/pkg/tools"
)

// Tool names exposed to the model.
const (
	KnowledgeToolName = "search_documents"
	UploadToolName    = "search_uploads"
)

// KnowledgeToolDescription describes the preloaded knowledge base tool.
const KnowledgeToolDescription = "Search the preloaded knowledge base for relevant documents."

// UploadToolDescription carries the priority contract: the model is told
// to prefer this tool whenever the question concerns uploaded material.
const UploadToolDescription = "Search the files the user uploaded with this message. Prefer this tool over other search tools whenever the question refers to uploaded or attached files."

// Session is one conversation: a transcript plus the backends needed to
// answer a turn. One message is processed at a time.
type Session struct {
	id        string
	llm       llms.LLM
	knowledge *rag.SearchEngine
	uploads   *rag.UploadIndexBuilder
	history   *History
	config    config.SessionConfig
	logger    *slog.Logger

	mu sync.Mutex
}

// NewSession creates a session. knowledge may be nil when no preload
// directory is configured; uploads may be nil when file upload is not
// wired (terminal chat without attachments).
func NewSession(id string, llm llms.LLM, knowledge *rag.SearchEngine, uploads *rag.UploadIndexBuilder, cfg config.SessionConfig, logger *slog.Logger) (*Session, error) {
	if llm == nil {
		return nil, fmt.Errorf("llm is required")
	}
	cfg.SetDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	history, err := NewHistory(llm.ModelName())
	if err != nil {
		return nil, err
	}

	return &Session{
		id:        id,
		llm:       llm,
		knowledge: knowledge,
		uploads:   uploads,
		history:   history,
		config:    cfg,
		logger:    logger,
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

// History returns the session transcript.
func (s *Session) History() *History {
	return s.history
}

// ProcessMessage runs one turn without status reporting.
func (s *Session) ProcessMessage(ctx context.Context, text string, files []rag.UploadedFile) (string, error) {
	return s.ProcessMessageWithStatus(ctx, text, files, nil)
}

// ProcessMessageWithStatus runs one turn: build the tool registry, run
// the orchestrator, classify the event stream, and append to history on
// success. Any failure is logged and converted to a user-visible message;
// the session stays usable either way.
func (s *Session) ProcessMessageWithStatus(ctx context.Context, text string, files []rag.UploadedFile, status StatusFunc) (answer string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	tracer := observability.GetTracer("lector.chat")
	ctx, span := tracer.Start(ctx, observability.SpanSessionTurn,
		trace.WithAttributes(
			attribute.String(observability.AttrSessionID, s.id),
			attribute.Int("session.files", len(files)),
		),
	)
	defer span.End()

	answer, err = s.processTurn(ctx, text, files, status)

	if m := observability.GetGlobalMetrics(); m != nil {
		m.RecordSessionTurn(ctx, time.Since(start), err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("message processing failed",
			"session", s.id,
			"files", len(files),
			"error", err,
		)
		return fmt.Sprintf("Sorry, something went wrong while processing your message: %v", err), err
	}

	span.SetStatus(codes.Ok, "success")
	return answer, nil
}

func (s *Session) processTurn(ctx context.Context, text string, files []rag.UploadedFile, status StatusFunc) (string, error) {
	registry := tools.NewToolRegistry()

	if s.knowledge != nil {
		if err := registry.RegisterTool(tools.NewSearchTool(s.knowledge, KnowledgeToolName, KnowledgeToolDescription)); err != nil {
			return "", err
		}
	}

	uploadedTool := ""
	if len(files) > 0 {
		if s.uploads == nil {
			return "", fmt.Errorf("file upload is not configured for this session")
		}
		if status != nil {
			status("Indexing uploaded files...")
		}

		index, err := s.uploads.Build(ctx, files)
		if err != nil {
			return "", err
		}
		defer func() {
			if dropErr := index.Engine.Drop(context.WithoutCancel(ctx)); dropErr != nil {
				s.logger.Warn("failed to drop upload index", "session", s.id, "error", dropErr)
			}
		}()

		for _, skipped := range index.Skipped {
			s.logger.Warn("uploaded file skipped", "session", s.id, "file", skipped.File, "error", skipped.Err)
			if status != nil {
				status(fmt.Sprintf("Skipped %s: %v", skipped.File, skipped.Err))
			}
		}

		if err := registry.RegisterTool(tools.NewSearchTool(index.Engine, UploadToolName, UploadToolDescription)); err != nil {
			return "", err
		}
		uploadedTool = UploadToolName
	}

	orchestrator := agent.New(s.llm, agent.Config{
		MaxIterations: s.config.MaxIterations,
		UploadedTool:  uploadedTool,
		Logger:        s.logger,
	})

	events := orchestrator.Run(ctx, text, s.history.FitWithinBudget(s.config.HistoryTokenBudget), registry)

	outcome := NewClassifier(status, s.logger).Consume(events)
	if outcome.Failed {
		if outcome.Err != nil {
			return "", outcome.Err
		}
		// Nothing usable arrived but no error either: show the fallback
		// without recording the turn.
		return outcome.Answer, nil
	}

	s.history.Append(RoleHuman, text)
	s.history.Append(RoleAI, outcome.Answer)

	return outcome.Answer, nil
}
