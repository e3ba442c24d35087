package cache

import (
	"net/url"
	"sort"
	"strings"
)

// RequestKey derives a deterministic cache key from a request shape:
// method, path and sorted query parameters. Two requests that differ only in
// query-parameter order share one entry.
func RequestKey(method, path string, query url.Values) string {
	var sb strings.Builder
	sb.WriteString(method)
	sb.WriteByte(':')
	sb.WriteString(path)

	if len(query) > 0 {
		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteByte('?')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte('&')
			}
			vals := append([]string(nil), query[k]...)
			sort.Strings(vals)
			for j, v := range vals {
				if j > 0 {
					sb.WriteByte('&')
				}
				sb.WriteString(k)
				sb.WriteByte('=')
				sb.WriteString(v)
			}
		}
	}
	return sb.String()
}

// QuestionDetailKey is the canonical read-path key of one question.
func QuestionDetailKey(id string) string {
	return "GET:/api/questions/" + id
}

// QuestionListPrefix covers every paginated variant of the questions listing.
func QuestionListPrefix() string {
	return "GET:/api/questions"
}
