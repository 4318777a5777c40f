package logger

// Standard structured-field keys, kept consistent across every log
// statement so log aggregation and querying can rely on them.
const (
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyFunction  = "function"
	KeyRequestID = "request_id"
	KeyAction    = "action"
	KeyLength    = "length"
	KeyCode      = "code"
	KeyMessage   = "message"
	KeyFraction  = "fraction"
	KeyArgCount  = "arg_count"
	KeyAddress   = "address"
	KeyError     = "error"
)
