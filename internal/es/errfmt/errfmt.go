// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package errfmt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// FormatQueryError builds a detailed error including response status, body, and pretty query.
// It best-effort indents the provided query JSON; on failure it still includes the raw query.
// When the body is an Elasticsearch error document its reason is lifted into the first line.
func FormatQueryError(status string, body []byte, queryJSON []byte) error {
	var prettyQuery bytes.Buffer
	_ = json.Indent(&prettyQuery, queryJSON, "", "  ")
	if prettyQuery.Len() == 0 {
		prettyQuery.Write(queryJSON)
	}
	if reason := Reason(body); reason != "" {
		return fmt.Errorf("search failed: %s: %s\nError: %s\n\nQuery:\n%s", status, reason, string(body), prettyQuery.String())
	}
	return fmt.Errorf("search failed: %s\nError: %s\n\nQuery:\n%s", status, string(body), prettyQuery.String())
}

// Reason extracts the most specific error reason from an Elasticsearch
// error body, or "" when body is not one.
func Reason(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"error.root_cause.0.reason", "error.reason"} {
		if r := gjson.GetBytes(body, path); r.Exists() && r.String() != "" {
			return r.String()
		}
	}
	if r := gjson.GetBytes(body, "error"); r.Type == gjson.String {
		return r.String()
	}
	return ""
}
