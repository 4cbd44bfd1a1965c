package agentlog

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Entry is one line of the agent's log file.
type Entry struct {
	// Timestamp of the entry, when the line carries one
	Timestamp *time.Time `json:"timestamp,omitempty"`

	// Level is the normalized level (DEBUG, INFO, WARN, ERROR, FATAL)
	Level string `json:"level,omitempty"`

	// Message is the main message content
	Message string `json:"message"`

	// Raw is the original line
	Raw string `json:"raw"`

	// LineNum is the 1-based position in the file, 0 when following
	LineNum int `json:"line_num,omitempty"`

	// Attrs holds the decoded fields of structured lines
	Attrs map[string]any `json:"attrs,omitempty"`
}

// ToJSON serializes the entry.
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// The agent writes its log through cabin, which prints each event as a
// Ruby hash:
//
//	{:timestamp=>"2013-06-03T12:00:00.123000+0000", :message=>"Pipeline started", :level=>:info}
var (
	hashTimestamp = regexp.MustCompile(`:timestamp=>"([^"]*)"`)
	hashMessage   = regexp.MustCompile(`:message=>"((?:[^"\\]|\\.)*)"`)
	hashLevel     = regexp.MustCompile(`:level=>:(\w+)`)
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000000-0700",
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
}

// ParseLine classifies a line of the agent log. JSON lines and cabin hash
// lines are decoded; anything else is kept raw with a level guessed from
// its text.
func ParseLine(line string, lineNum int) *Entry {
	entry := &Entry{Raw: line, LineNum: lineNum}
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if parseJSON(trimmed, entry) || parseHash(trimmed, entry) {
			return entry
		}
	}

	entry.Message = line
	entry.Level = guessLevel(line)
	return entry
}

func parseJSON(line string, entry *Entry) bool {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return false
	}
	entry.Attrs = fields

	if msg, ok := fields["message"].(string); ok {
		entry.Message = msg
	} else if msg, ok := fields["msg"].(string); ok {
		entry.Message = msg
	}
	if level, ok := fields["level"].(string); ok {
		entry.Level = normalizeLevel(level)
	}
	for _, key := range []string{"timestamp", "@timestamp", "ts"} {
		if ts, ok := fields[key].(string); ok {
			if t, ok := parseTimestamp(ts); ok {
				entry.Timestamp = &t
				break
			}
		}
	}
	return true
}

func parseHash(line string, entry *Entry) bool {
	m := hashMessage.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	if msg, err := strconv.Unquote(`"` + m[1] + `"`); err == nil {
		entry.Message = msg
	} else {
		entry.Message = m[1]
	}
	if l := hashLevel.FindStringSubmatch(line); l != nil {
		entry.Level = normalizeLevel(l[1])
	}
	if ts := hashTimestamp.FindStringSubmatch(line); ts != nil {
		if t, ok := parseTimestamp(ts[1]); ok {
			entry.Timestamp = &t
		}
	}
	return true
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func guessLevel(message string) string {
	upper := strings.ToUpper(message)
	switch {
	case strings.Contains(upper, "FATAL"):
		return "FATAL"
	case strings.Contains(upper, "ERROR") || strings.Contains(upper, "EXCEPTION"):
		return "ERROR"
	case strings.Contains(upper, "WARN"):
		return "WARN"
	case strings.Contains(upper, "DEBUG"):
		return "DEBUG"
	case strings.Contains(upper, "INFO"):
		return "INFO"
	default:
		return ""
	}
}

func normalizeLevel(level string) string {
	upper := strings.ToUpper(level)
	switch upper {
	case "WARNING":
		return "WARN"
	case "CRITICAL":
		return "FATAL"
	case "TRACE":
		return "DEBUG"
	default:
		return upper
	}
}

var levelRank = map[string]int{
	"DEBUG": 1,
	"INFO":  2,
	"WARN":  3,
	"ERROR": 4,
	"FATAL": 5,
}

// AtLeast reports whether the entry is at or above min. Entries without a
// recognizable level always pass, as does an empty min.
func (e *Entry) AtLeast(min string) bool {
	want, ok := levelRank[normalizeLevel(min)]
	if !ok {
		return true
	}
	have, ok := levelRank[e.Level]
	if !ok {
		return true
	}
	return have >= want
}
