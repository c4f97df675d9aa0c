package youtube

import (
	"fmt"
	"strings"
	"unicode"
)

// maxURLLength bounds what is handed to the downloader as a positional argument.
const maxURLLength = 2048

// ValidateURL checks that input is safe to pass to the downloader as its
// final argument. Reachability is never checked.
func ValidateURL(s string) error {
	if s == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(s) > maxURLLength {
		return fmt.Errorf("URL too long: %d characters", len(s))
	}
	if strings.HasPrefix(s, "-") {
		return fmt.Errorf("URL %q looks like a command-line flag", s)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("URL contains control characters: %q", s)
		}
	}
	return nil
}
