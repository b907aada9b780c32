// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

// Package watch reads span and log documents from local files: saved
// search responses, followed NDJSON files, and plain text logs.
package watch

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/elastic/chartcat/internal/histogram"
)

// Fields set on hits built from plain text lines.
const (
	TimestampField = "@timestamp"
	MessageField   = "message"
	LevelField     = "log.level"
	ServiceField   = "service.name"
)

// lineNamespace seeds the ids of hits read from files without an _id.
var lineNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("chartcat/file-line"))

// timestampRe matches ISO-8601 style stamps with either a "T" or a space
// between date and time, "-" or "/" date separators and an optional zone.
// Stamps without a zone are read as UTC.
var timestampRe = regexp.MustCompile(`\d{4}[-/]\d{2}[-/]\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?(Z|[+-]\d{2}:\d{2})?`)

// levelAliases maps lower-cased level spellings to their canonical name.
var levelAliases = map[string]string{
	"trace":       "TRACE",
	"debug":       "DEBUG",
	"info":        "INFO",
	"information": "INFO",
	"warn":        "WARN",
	"warning":     "WARN",
	"err":         "ERROR",
	"error":       "ERROR",
	"fatal":       "FATAL",
	"critical":    "FATAL",
	"panic":       "FATAL",
}

// ParseLine turns one line of a followed file into a hit. JSON lines are
// either a search hit ({"_id", "_index", "_source"}) or a bare document.
// Plain text lines become a log document when they carry a timestamp.
// Lines that cannot be placed on a time axis are skipped.
func ParseLine(line, source string, lineNo int) (histogram.SearchHit, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return histogram.SearchHit{}, false
	}

	if strings.HasPrefix(trimmed, "{") {
		var raw map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &raw); err == nil {
			return jsonHit(raw, trimmed, source, lineNo), true
		}
	}

	ts, ok := parseTimestamp(trimmed)
	if !ok {
		return histogram.SearchHit{}, false
	}
	doc := map[string]interface{}{
		TimestampField: ts.UTC().Format(time.RFC3339Nano),
		MessageField:   trimmed,
		ServiceField:   ServiceFromFilename(source),
	}
	if level := parseLevel(trimmed); level != "" {
		doc[LevelField] = level
	}
	return histogram.SearchHit{ID: lineID(source, lineNo, trimmed), Index: source, Source: doc}, true
}

func jsonHit(raw map[string]interface{}, line, source string, lineNo int) histogram.SearchHit {
	hit := histogram.SearchHit{Index: source, Source: raw}
	if src, ok := raw["_source"].(map[string]interface{}); ok {
		hit.Source = src
		if id, ok := raw["_id"].(string); ok {
			hit.ID = id
		}
		if index, ok := raw["_index"].(string); ok {
			hit.Index = index
		}
	}
	if hit.ID == "" {
		hit.ID = lineID(source, lineNo, line)
	}
	if level, ok := hit.Source[LevelField].(string); ok {
		if n := normalizeLevel(level); n != "" {
			hit.Source[LevelField] = n
		}
	}
	return hit
}

// lineID is stable for the same line at the same position of the same file.
func lineID(source string, lineNo int, line string) string {
	return uuid.NewSHA1(lineNamespace, []byte(source+"\x00"+strconv.Itoa(lineNo)+"\x00"+line)).String()
}

func parseTimestamp(line string) (time.Time, bool) {
	m := timestampRe.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	stamp := []byte(m[0])
	stamp[4], stamp[7], stamp[10] = '-', '-', 'T'
	if m[1] == "" {
		stamp = append(stamp, 'Z')
	}
	t, err := time.Parse(time.RFC3339Nano, string(stamp))
	return t, err == nil
}

// parseLevel returns the first word of line that names a log level.
func parseLevel(line string) string {
	for _, word := range strings.FieldsFunc(line, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if level := normalizeLevel(word); level != "" {
			return level
		}
	}
	return ""
}

// normalizeLevel returns the canonical spelling of s, or "" when s is not
// a known level.
func normalizeLevel(s string) string {
	return levelAliases[strings.ToLower(strings.TrimSpace(s))]
}

// ServiceFromFilename derives a service name from a log file name by
// dropping the directory, the extension and a stream suffix such as "-err".
func ServiceFromFilename(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	lower := strings.ToLower(name)
	for _, suffix := range []string{"-err", "-error", "-out", "-info", "-debug", "-log"} {
		if strings.HasSuffix(lower, suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	if name == "" || name == "." {
		return "unknown"
	}
	return name
}
