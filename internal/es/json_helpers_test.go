// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package es

import "testing"

func TestPrettyJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "invalid", in: "not json", want: "not json"},
		{name: "truncated", in: `{"size":`, want: `{"size":`},
		{name: "empty object", in: `{}`, want: `{}`},
		{
			name: "keeps key order",
			in:   `{"size":0,"aggs":{"histogram":{"date_histogram":{"field":"@timestamp"}}}}`,
			want: "{\n  \"size\": 0,\n  \"aggs\": {\n    \"histogram\": {\n      \"date_histogram\": {\n        \"field\": \"@timestamp\"\n      }\n    }\n  }\n}",
		},
		{
			name: "reindents and trims",
			in:   "\n{\n\"a\":  [1,2]}\n",
			want: "{\n  \"a\": [\n    1,\n    2\n  ]\n}",
		},
		{name: "large integer untouched", in: `{"ts":1700000000000000000}`, want: "{\n  \"ts\": 1700000000000000000\n}"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PrettyJSON([]byte(tt.in)); got != tt.want {
				t.Errorf("PrettyJSON(%q) =\n%s\nwant\n%s", tt.in, got, tt.want)
			}
		})
	}
}
