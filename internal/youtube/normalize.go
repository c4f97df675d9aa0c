// Package youtube turns user input into canonical YouTube URLs and decides
// what kind of content they point at.
package youtube

import "strings"

// BaseURL is the canonical site prefix used when expanding channel handles.
const BaseURL = "https://www.youtube.com/"

// knownHosts are bare host prefixes that get a scheme added.
var knownHosts = []string{
	"youtube.com",
	"www.youtube.com",
	"m.youtube.com",
	"music.youtube.com",
	"youtu.be",
}

// Normalize rewrites shorthand input into an absolute URL.
// "@handle" becomes a channel handle URL and bare YouTube hosts get https://.
// Anything else is returned trimmed but otherwise untouched.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "@") {
		return BaseURL + s
	}

	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		for _, host := range knownHosts {
			if strings.HasPrefix(s, host) {
				return "https://" + s
			}
		}
	}

	return s
}
