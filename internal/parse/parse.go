// Package parse recovers typed JSON values from free-text model output.
// The generator upstream is not a strict JSON emitter: responses arrive
// wrapped in code fences, surrounded by prose, or with trailing commas.
// The parser tolerates exactly those defects. Deeper malformation
// (unescaped quotes, truncated objects) is a real failure and surfaces
// as a parse error instead of being guessed at.
package parse

import (
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"github.com/flowboard/aicore/pkg/aierr"
)

// maxDiagnosticLen bounds the raw-text prefix attached to parse errors,
// so a pathological response cannot blow up error logs.
const maxDiagnosticLen = 2000

var (
	fenceRe         = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\n?(.*?)```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// Into decodes the first JSON object (or, failing that, array) found in
// raw into T. Returns a parse_error when no decodable span exists.
func Into[T any](raw string) (T, error) {
	var out T

	span, err := Extract(raw)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal([]byte(span), &out); err != nil {
		var zero T
		return zero, parseFailure(raw)
	}
	return out, nil
}

// Extract locates and repairs the JSON span inside raw model text and
// returns it still encoded. First success wins: object span, then array
// span.
func Extract(raw string) (string, error) {
	text := stripFences(raw)

	if span, ok := trySpan(text, '{', '}'); ok {
		return span, nil
	}
	if span, ok := trySpan(text, '[', ']'); ok {
		return span, nil
	}
	return "", parseFailure(raw)
}

// trySpan cuts the first opening to the last closing delimiter and checks
// that the repaired span decodes. The first-to-last heuristic is
// deliberate: it tolerates prose before and after the JSON without a
// full bracket walk.
func trySpan(text string, opening, closing byte) (string, bool) {
	start := strings.IndexByte(text, opening)
	end := strings.LastIndexByte(text, closing)
	if start == -1 || end == -1 || end < start {
		return "", false
	}

	span := repair(text[start : end+1])

	if !json.Valid([]byte(span)) {
		return "", false
	}
	return span, true
}

// stripFences removes markdown code-block delimiters, keeping the fenced
// body. Text without fences passes through unchanged.
func stripFences(text string) string {
	if m := fenceRe.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return text
}

// repair applies light syntactic fixes: trailing commas before a closing
// brace or bracket, and stray BOM/whitespace.
func repair(span string) string {
	span = trailingCommaRe.ReplaceAllString(span, "$1")
	span = strings.TrimPrefix(span, "\ufeff")
	return strings.TrimSpace(span)
}

func parseFailure(raw string) *aierr.Error {
	return aierr.NewParseError("no decodable JSON in model output").
		WithDetail(truncate(raw, maxDiagnosticLen))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
