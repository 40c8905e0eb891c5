package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"sniff/internal/domain"
)

// jsonPayload is a decoded JSON candidate plus the exact text it was
// decoded from. Salvage-mode fallback scanning needs the text: object
// keys must be tried in document order, which the decoded map no longer
// knows.
type jsonPayload struct {
	value any
	text  string
}

// tryParseJSONPayload extracts a JSON value from raw model output. It
// tolerates surrounding prose, markdown fences, and trailing garbage
// after a balanced object or array. A bare top-level null counts as no
// payload.
func tryParseJSONPayload(raw string) (jsonPayload, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return jsonPayload{}, false
	}

	if v, ok := tryDecode(text); ok {
		return jsonPayload{value: v, text: text}, true
	}

	if strings.Contains(text, "```") {
		lines := splitLines(text)
		if len(lines) > 0 && strings.HasPrefix(strings.TrimLeft(lines[0], " \t"), "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.HasSuffix(strings.TrimRight(lines[len(lines)-1], " \t"), "```") {
			lines = lines[:len(lines)-1]
		}
		text = strings.TrimSpace(strings.Join(lines, "\n"))
		if v, ok := tryDecode(text); ok {
			return jsonPayload{value: v, text: text}, true
		}
	}

	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		candidate, ok := extractBalanced(text, pair[0], pair[1])
		if !ok {
			continue
		}
		if v, ok := tryDecode(candidate); ok {
			return jsonPayload{value: v, text: candidate}, true
		}
	}

	return jsonPayload{}, false
}

func tryDecode(text string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	if v == nil {
		return nil, false
	}
	return v, true
}

// extractBalanced returns the first balanced open..close span, honoring
// JSON string literals and escapes so brackets inside strings don't
// count.
func extractBalanced(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// normalizeResponse turns one raw model response into findings.
//
// Strict mode accepts only the contract shape {"findings": [...]} and
// silently drops anything else. Salvage mode additionally recovers
// findings parked under wrong keys and records unusable responses as
// line -1 diagnostic findings so they stay visible in reports.
func normalizeResponse(raw, filename string, smell domain.SmellDefinition, mode domain.NormalizeMode) []domain.Finding {
	payload, ok := tryParseJSONPayload(raw)
	if !ok {
		if mode == domain.NormalizeStrict {
			return nil
		}
		return []domain.Finding{unparseableFinding(raw, filename, smell)}
	}
	if mode == domain.NormalizeStrict {
		return normalizeStrict(payload, raw, filename, smell)
	}
	return normalizeSalvage(payload, raw, filename, smell)
}

func normalizeStrict(payload jsonPayload, raw, filename string, smell domain.SmellDefinition) []domain.Finding {
	obj, ok := payload.value.(map[string]any)
	if !ok {
		return nil
	}
	list, ok := obj["findings"].([]any)
	if !ok {
		return nil
	}
	for _, el := range list {
		if _, ok := el.(map[string]any); !ok {
			return nil
		}
	}

	var out []domain.Finding
	for _, el := range list {
		item := el.(map[string]any)
		if f, ok := findingFromItem(item, raw, filename, smell, domain.NormalizeStrict, ""); ok {
			out = append(out, f)
		}
	}
	return out
}

func normalizeSalvage(payload jsonPayload, raw, filename string, smell domain.SmellDefinition) []domain.Finding {
	obj, isObj := payload.value.(map[string]any)

	var findingsVal any
	sourceKey := ""
	schemaInvalid := false

	if isObj {
		findingsVal = obj["findings"]
		if findingsVal == nil {
			for _, key := range orderedKeys(payload.text) {
				v := obj[key]
				candidate, isList := safeFindingList(v)
				if !isList {
					single, isSingle := safeSingleFinding(v)
					if !isSingle {
						continue
					}
					findingsVal = []any{single}
					sourceKey = key
					break
				}
				if anyHasLineKey(candidate) {
					findingsVal = candidate
					sourceKey = key
					break
				}
			}
			if findingsVal == nil {
				schemaInvalid = true
			}
		}
	}

	items, _ := findingsVal.([]any)
	if schemaInvalid {
		return []domain.Finding{schemaInvalidFinding(raw, filename, smell)}
	}

	var out []domain.Finding
	for _, el := range items {
		item, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if f, ok := findingFromItem(item, raw, filename, smell, domain.NormalizeSalvage, sourceKey); ok {
			out = append(out, f)
		}
	}
	return out
}

// findingFromItem builds one finding from a response item. Items with no
// usable positive line number are dropped; everything else is coerced
// into shape.
func findingFromItem(item map[string]any, raw, filename string, smell domain.SmellDefinition, mode domain.NormalizeMode, sourceKey string) (domain.Finding, bool) {
	lineVal, present := item["line"]
	if !present {
		lineVal = float64(-1)
	}
	if isNegOne(lineVal) {
		if v, ok := item["line_number"]; ok {
			lineVal = v
		}
	}
	line, ok := coerceLine(lineVal)
	if !ok || line <= 0 {
		return domain.Finding{}, false
	}

	var confidence *float64
	if v, ok := item["confidence"]; ok && v != nil {
		if f, ok := coerceFloat(v); ok {
			confidence = &f
		}
	}

	var desc string
	if mode == domain.NormalizeStrict {
		if v, ok := item["description"]; ok {
			desc = safeStr(v)
		} else {
			desc = fallbackDescription(smell)
		}
	} else {
		if v := item["description"]; !isFalsy(v) {
			desc = safeStr(v)
		} else if sourceKey != "" {
			desc = fmt.Sprintf("Recovered from non-standard JSON schema key '%s'", sourceKey)
		} else {
			desc = fallbackDescription(smell)
		}
	}

	var info string
	if mode == domain.NormalizeStrict {
		info = safeStr(item["additional_info"])
	} else if v, ok := item["additional_info"]; ok {
		info = safeStr(v)
	} else if v, ok := item["code_snippet"]; ok {
		info = safeStr(v)
	} else if v, ok := item["code"]; ok {
		info = safeStr(v)
	}

	return domain.Finding{
		Filename:       filename,
		FunctionName:   safeStr(item["function_name"]),
		SmellName:      smell.DisplayName,
		Line:           line,
		Description:    desc,
		AdditionalInfo: info,
		SmellID:        smell.SmellID,
		Confidence:     confidence,
		RawResponse:    raw,
	}, true
}

func unparseableFinding(raw, filename string, smell domain.SmellDefinition) domain.Finding {
	return domain.Finding{
		Filename:       filename,
		SmellName:      smell.DisplayName,
		Line:           -1,
		Description:    fallbackDescription(smell),
		AdditionalInfo: "Unparseable LLM response; see raw_response",
		SmellID:        smell.SmellID,
		RawResponse:    raw,
	}
}

func schemaInvalidFinding(raw, filename string, smell domain.SmellDefinition) domain.Finding {
	return domain.Finding{
		Filename:       filename,
		SmellName:      smell.DisplayName,
		Line:           -1,
		Description:    "Invalid LLM response schema (missing 'findings')",
		AdditionalInfo: "Expected {\"findings\": [...]}; see raw_response",
		SmellID:        smell.SmellID,
		RawResponse:    raw,
	}
}

func fallbackDescription(smell domain.SmellDefinition) string {
	if smell.Description != "" {
		return smell.Description
	}
	return smell.DisplayName
}

// safeFindingList accepts a value only if it is a list whose elements
// are all objects.
func safeFindingList(v any) ([]any, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	for _, el := range list {
		if _, ok := el.(map[string]any); !ok {
			return nil, false
		}
	}
	return list, true
}

// safeSingleFinding accepts a lone object that carries a line marker, so
// {"smell": {"line": 3, ...}} salvages as a one-item list.
func safeSingleFinding(v any) (map[string]any, bool) {
	item, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	if hasLineKey(item) {
		return item, true
	}
	return nil, false
}

func anyHasLineKey(list []any) bool {
	for _, el := range list {
		if item, ok := el.(map[string]any); ok && hasLineKey(item) {
			return true
		}
	}
	return false
}

func hasLineKey(item map[string]any) bool {
	if _, ok := item["line"]; ok {
		return true
	}
	_, ok := item["line_number"]
	return ok
}

// orderedKeys lists the top-level keys of a JSON object literal in
// document order. Go maps shuffle iteration, but which wrong key wins a
// salvage scan must not depend on that.
func orderedKeys(objText string) []string {
	dec := json.NewDecoder(strings.NewReader(objText))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := keyTok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
	}
	return keys
}

func isNegOne(v any) bool {
	f, ok := v.(float64)
	return ok && f == -1
}

// coerceLine coerces a line value leniently: JSON numbers truncate
// toward zero, numeric strings parse after trimming, everything else is
// rejected.
func coerceLine(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(x), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// safeStr renders a response value as a string without failing: strings
// pass through, null becomes empty, and structured values render as
// compact JSON.
func safeStr(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(b)
	}
}

// isFalsy reports whether a response value is empty in the loose sense
// models tend to produce: null, "", 0, false, or an empty container.
func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case float64:
		return x == 0
	case bool:
		return !x
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}
