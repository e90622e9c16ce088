package observability

const (
	AttrToolName        = "tool.name"
	AttrLLMModel        = "llm.model"
	AttrLLMTokensInput  = "llm.tokens.input"
	AttrLLMTokensOutput = "llm.tokens.output"
	AttrSessionID       = "session.id"
	AttrCollection      = "rag.collection"
	AttrErrorType       = "error.type"

	SpanSessionTurn   = "session.turn"
	SpanLLMRequest    = "session.llm_request"
	SpanToolExecution = "session.tool_execution"
	SpanIngestion     = "rag.ingest"
	SpanSearch        = "rag.search"

	DefaultServiceName = "lector"
)
