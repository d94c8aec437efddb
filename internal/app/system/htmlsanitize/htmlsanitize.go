// Package htmlsanitize cleans free-text form input (join reasons, event
// descriptions, application reasons) before it is stored.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// StripTags removes every HTML element from s, keeping the text content.
// Entities produced by the policy are decoded so the stored value is plain
// text; escaping happens again at render time.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy().Sanitize(s)))
}
