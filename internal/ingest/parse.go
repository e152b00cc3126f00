package ingest

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	objectSeparator = regexp.MustCompile(`}\s*,\s*{`)
	quotedPair      = regexp.MustCompile(`"([^"]+)"\s*:\s*"([^"]*)"`)
	barePair        = regexp.MustCompile(`"([^"]+)"\s*:\s*([^",}]+)`)
	codeSeparator   = regexp.MustCompile(`[,\s]+`)
)

// NormaliseName drops all whitespace and lowercases, so names typed with
// stray spaces or line breaks still match.
func NormaliseName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

// cleanJSONish repairs the mistakes spreadsheet editors make when typing
// JSON by hand: trailing commas and objects separated by line breaks.
func cleanJSONish(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.NewReplacer(",]", "]", ",\n]", "]", "\n]", "]").Replace(s)
	return strings.NewReplacer("}\n{", "},{", "}\r\n{", "},{").Replace(s)
}

// ParseList reads a cell holding a JSON array of strings. Anything else is
// split into lines.
func ParseList(cell string) []string {
	cleaned := cleanJSONish(cell)
	if cleaned == "" {
		return []string{}
	}

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
		if items, ok := parsed.([]any); ok {
			out := make([]string, 0, len(items))
			for _, item := range items {
				if s := strings.TrimSpace(stringify(item)); s != "" {
					out = append(out, s)
				}
			}
			return out
		}
	}

	out := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(cleaned, "\r", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseObjectList reads a cell holding a JSON array of objects, such as
// links or co-workers. Bare strings become {"name": s}. When the cell is
// not valid JSON the key/value pairs are scraped out of each {...} chunk.
func ParseObjectList(cell string) []map[string]string {
	cleaned := cleanJSONish(cell)
	if cleaned == "" {
		return []map[string]string{}
	}

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return scrapeObjects(cleaned)
	}

	out := []map[string]string{}
	items, _ := parsed.([]any)
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			entry := make(map[string]string, len(v))
			for key, val := range v {
				entry[key] = strings.TrimSpace(stringify(val))
			}
			if hasValue(entry) {
				out = append(out, entry)
			}
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = append(out, map[string]string{"name": s})
			}
		}
	}
	return out
}

func scrapeObjects(s string) []map[string]string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
	}

	out := []map[string]string{}
	for _, chunk := range objectSeparator.Split(s, -1) {
		chunk = strings.Trim(strings.TrimSpace(chunk), "{} \n\r\t")
		if chunk == "" {
			continue
		}
		entry := map[string]string{}
		for _, m := range quotedPair.FindAllStringSubmatch(chunk, -1) {
			entry[m[1]] = strings.TrimSpace(m[2])
		}
		for _, m := range barePair.FindAllStringSubmatch(chunk, -1) {
			if _, seen := entry[m[1]]; seen {
				continue
			}
			val := strings.TrimSpace(m[2])
			if val == "" {
				continue
			}
			switch lower := strings.ToLower(val); lower {
			case "true", "false", "null":
				val = lower
			}
			entry[m[1]] = val
		}
		if hasValue(entry) {
			out = append(out, entry)
		}
	}
	return out
}

// ParseBool accepts true, 1, yes and y in any case.
func ParseBool(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

// ParseCodes reads a list of work codes separated by commas or whitespace,
// optionally wrapped in brackets.
func ParseCodes(cell string) []string {
	cleaned := strings.TrimSpace(strings.NewReplacer("[", " ", "]", " ").Replace(cell))
	out := []string{}
	if cleaned == "" {
		return out
	}
	for _, part := range codeSeparator.Split(cleaned, -1) {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// multiline turns literal \n escapes and carriage returns into newlines.
func multiline(s string) string {
	return strings.TrimSpace(strings.NewReplacer(`\n`, "\n", "\r", "\n").Replace(s))
}

// oneLine folds line breaks typed into a name cell.
func oneLine(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func hasValue(m map[string]string) bool {
	for _, v := range m {
		if v != "" {
			return true
		}
	}
	return false
}
