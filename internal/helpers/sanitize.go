package helpers

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultFilename replaces a client-supplied name that sanitises to nothing.
const DefaultFilename = "document.pdf"

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// StrictHTMLPolicy returns a singleton bluemonday policy that strips every HTML
// element and attribute.
func StrictHTMLPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// SanitizeHTMLStrict removes every HTML tag from s and trims the result.
func SanitizeHTMLStrict(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(StrictHTMLPolicy().Sanitize(s))
}

// SanitizeFilename strips markup and any directory part, Windows or POSIX,
// from an uploaded file name before it is stored or echoed back to admins.
func SanitizeFilename(name string) string {
	name = SanitizeHTMLStrict(name)
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return DefaultFilename
	}
	return name
}
