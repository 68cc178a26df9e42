package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParse is returned when model output cannot be coerced to JSON even after
// repair. Callers treat this as a failed generation, never as partial data.
var ErrParse = errors.New("unparseable model output")

var (
	// ["a"], ["b"] emitted where ["a", "b"] was meant
	splitArrayRe = regexp.MustCompile(`"\s*\]\s*,\s*\[\s*"`)
	// trailing comma immediately before a closing brace or bracket
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// ParseJSON turns raw model text into a JSON value, repairing common
// malformations. It is a pure text transformation with no schema awareness;
// shape validation is the orchestrator's job.
func ParseJSON(raw string) (map[string]interface{}, error) {
	text := stripCodeFence(raw)

	if parsed, err := tryParse(text); err == nil {
		return parsed, nil
	}

	// Structural repairs, in order: rejoin erroneously split arrays, then
	// strip trailing commas. One re-parse after repair; no partial acceptance.
	repaired := splitArrayRe.ReplaceAllString(text, `", "`)
	repaired = trailingCommaRe.ReplaceAllString(repaired, "$1")

	parsed, err := tryParse(repaired)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return parsed, nil
}

func tryParse(text string) (map[string]interface{}, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

// stripCodeFence removes a surrounding markdown code fence and any prose
// around the outermost JSON object (the model sometimes wraps JSON in
// ```json ... ``` or prefixes it with a sentence).
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}

	return text[start : end+1]
}
