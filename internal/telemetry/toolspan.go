package telemetry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ToolCallSpanName is the fixed span name every tool invocation is wrapped in.
const ToolCallSpanName = "mcp.tool_call"

// ArgsHash returns the first 16 hex characters of SHA-256 over the
// JSON-canonicalized arguments.
func ArgsHash(args json.RawMessage) string {
	return contentHash(args)
}

// ResultHash returns the first 16 hex characters of SHA-256 over the
// serialized result text, using the same construction as ArgsHash.
func ResultHash(text string) string {
	return contentHash([]byte(text))
}

func contentHash(b []byte) string {
	sum := sha256.Sum256(canonicalize(b))
	return hex.EncodeToString(sum[:])[:16]
}

// canonicalize re-marshals b through encoding/json so that semantically
// equal JSON (differing only in whitespace or map key order) hashes
// identically. Non-JSON or empty input is hashed verbatim.
func canonicalize(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return b
	}
	out, err := json.Marshal(v)
	if err != nil {
		return b
	}
	return out
}

// StartToolCall opens a SERVER-kind span named mcp.tool_call with
// attributes gen_ai.operation.name, mcp.tool.name, mcp.server.name, and
// mcp.tool.args_hash. The caller must end the returned span exactly once
// with the outcome, via EndToolCallSuccess or EndToolCallError.
func StartToolCall(ctx context.Context, serverName, toolName string, args json.RawMessage) (context.Context, trace.Span) {
	ctx, span := Get().Start(ctx, ToolCallSpanName, trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "execute_tool"),
			attribute.String("mcp.tool.name", toolName),
			attribute.String("mcp.server.name", serverName),
			attribute.String("mcp.tool.args_hash", ArgsHash(args)),
		),
	)
	return ctx, span
}

// EndToolCallSuccess records the result hash and sets status OK.
func EndToolCallSuccess(span trace.Span, resultText string) {
	span.SetAttributes(attribute.String("mcp.tool.result_hash", ResultHash(resultText)))
	span.SetStatus(codes.Ok, "")
	span.End()
}

// EndToolCallError records an exception event and sets status ERROR.
func EndToolCallError(span trace.Span, errType, errMsg string) {
	span.SetStatus(codes.Error, errMsg)
	span.AddEvent("exception", trace.WithAttributes(
		attribute.String("exception.type", errType),
		attribute.String("exception.message", errMsg),
	))
	span.End()
}
