package clean

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ligatureReplacer expands typographic ligatures and smart punctuation
// into their plain equivalents.
var ligatureReplacer = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬆ", "st",
	"œ", "oe",
	"æ", "ae",
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"–", "-",
	"—", "--",
	"…", "...",
)

var (
	multiSpaceRe = regexp.MustCompile(` +`)
	blankRunsRe  = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText normalizes extracted text: ligatures and smart
// punctuation expanded, line endings unified, trailing whitespace
// trimmed with leading indentation preserved, internal runs of spaces
// collapsed, runs of blank lines capped at two, and a final Unicode
// NFC pass. Applying it twice gives the same result as applying it
// once.
func (c *Cleaner) NormalizeText(text string) string {
	if text == "" {
		return text
	}

	s := ligatureReplacer.Replace(text)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\t", " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\n\v\f")
		content := strings.TrimLeft(line, " ")
		if content != "" {
			indent := line[:len(line)-len(content)]
			lines[i] = indent + multiSpaceRe.ReplaceAllString(content, " ")
		} else {
			lines[i] = line
		}
	}

	s = strings.Join(lines, "\n")
	s = blankRunsRe.ReplaceAllString(s, "\n\n")
	return norm.NFC.String(s)
}
