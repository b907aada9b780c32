// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/tidwall/gjson"
)

// ESQLUnknownIndexError indicates an ES|QL query failed because the FROM index pattern
// matched no existing indices/data streams (ES returns a 400 verification_exception).
//
// We treat this as an "empty state" condition in higher layers.
type ESQLUnknownIndexError struct {
	Index  string // the unknown index pattern, e.g. "traces-*"
	Status string // HTTP status string, e.g. "400 Bad Request"
	Body   string // raw ES error body (best-effort)
}

func (e *ESQLUnknownIndexError) Error() string {
	if e == nil {
		return "ES|QL unknown index"
	}
	if e.Status != "" {
		return "ES|QL unknown index: " + e.Index + " (" + e.Status + ")"
	}
	return "ES|QL unknown index: " + e.Index
}

// IsESQLUnknownIndex returns (indexPattern, true) if err represents an ES|QL
// "Unknown index [pattern]" verification error.
func IsESQLUnknownIndex(err error) (string, bool) {
	var u *ESQLUnknownIndexError
	if errors.As(err, &u) && u != nil {
		return u.Index, true
	}
	return "", false
}

// ESQLUnknownColumnError indicates an ES|QL query referenced a field that no
// index in the pattern maps, e.g. a latency query over spans without
// durationInNanos.
type ESQLUnknownColumnError struct {
	Column string
	Status string
	Body   string
}

func (e *ESQLUnknownColumnError) Error() string {
	if e == nil || e.Column == "" {
		return "ES|QL unknown column"
	}
	return "ES|QL unknown column: " + e.Column
}

// IsESQLUnknownColumn returns (column, true) if err is an unknown column error.
func IsESQLUnknownColumn(err error) (string, bool) {
	var u *ESQLUnknownColumnError
	if errors.As(err, &u) && u != nil {
		return u.Column, true
	}
	return "", false
}

// ESQLUnsupportedFieldTypeError indicates an ES|QL query failed because it referenced
// a field with a type not supported by ES|QL in that context (e.g., histogram).
type ESQLUnsupportedFieldTypeError struct {
	Field  string // full field name, e.g. "metrics.transaction.duration.histogram"
	Type   string // unsupported ES type, e.g. "histogram"
	Status string // HTTP status string, e.g. "400 Bad Request"
	Body   string // raw ES error body (best-effort)
}

func (e *ESQLUnsupportedFieldTypeError) Error() string {
	if e == nil {
		return "ES|QL unsupported field type"
	}
	if e.Type != "" && e.Field != "" {
		return "ES|QL unsupported field type: " + e.Field + " (" + e.Type + ")"
	}
	if e.Field != "" {
		return "ES|QL unsupported field type: " + e.Field
	}
	return "ES|QL unsupported field type"
}

// IsESQLUnsupportedFieldType returns (field, type, true) if err represents an ES|QL
// verification error about using an unsupported field type (e.g. histogram).
func IsESQLUnsupportedFieldType(err error) (string, string, bool) {
	var u *ESQLUnsupportedFieldTypeError
	if errors.As(err, &u) && u != nil {
		return u.Field, u.Type, true
	}
	return "", "", false
}

// IsESQLEmptyStateError returns true if the error represents an expected
// empty-state condition (no data yet, a field no document has, an
// unsupported field type) rather than an actual failure.
func IsESQLEmptyStateError(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := IsESQLUnknownIndex(err); ok {
		return true
	}
	if _, ok := IsESQLUnknownColumn(err); ok {
		return true
	}
	if _, _, ok := IsESQLUnsupportedFieldType(err); ok {
		return true
	}
	return false
}

// EmptyESQLResult returns an empty result suitable for returning when
// an empty-state error is detected.
func EmptyESQLResult() *ESQLResult {
	return &ESQLResult{Columns: []ESQLColumn{}, Values: [][]interface{}{}}
}

var (
	unknownIndexPattern    = regexp.MustCompile(`Unknown index \[([^\]]+)\]`)
	unknownColumnPattern   = regexp.MustCompile(`Unknown column \[([^\]]+)\]`)
	unsupportedTypePattern = regexp.MustCompile(`Cannot use field \[([^\]]+)\] with unsupported type \[([^\]]+)\]`)
)

// ParseESQLError turns a failed /_query response into an error. Verification
// failures that only mean "nothing to show" come back as the typed errors
// above; everything else is a plain error carrying the body and query.
func ParseESQLError(statusCode int, status string, body []byte, query string) error {
	if statusCode == http.StatusBadRequest && gjson.ValidBytes(body) {
		errType := gjson.GetBytes(body, "error.type").String()
		reason := gjson.GetBytes(body, "error.reason").String()
		if errType == "verification_exception" {
			if m := unknownIndexPattern.FindStringSubmatch(reason); m != nil {
				return &ESQLUnknownIndexError{Index: m[1], Status: status, Body: string(body)}
			}
			if m := unsupportedTypePattern.FindStringSubmatch(reason); m != nil {
				return &ESQLUnsupportedFieldTypeError{Field: m[1], Type: m[2], Status: status, Body: string(body)}
			}
			if m := unknownColumnPattern.FindStringSubmatch(reason); m != nil {
				return &ESQLUnknownColumnError{Column: m[1], Status: status, Body: string(body)}
			}
		}
	}
	return fmt.Errorf("ES|QL query failed: %s\nError: %s\n\nQuery:\n%s", status, string(body), query)
}
