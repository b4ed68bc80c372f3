package classify

import "regexp"

// ListMarkerType categorizes the marker that opens a list item.
type ListMarkerType string

const (
	MarkerBullet   ListMarkerType = "bullet"
	MarkerNumbered ListMarkerType = "numbered"
	MarkerLettered ListMarkerType = "lettered"
	MarkerRoman    ListMarkerType = "roman"
	MarkerUnknown  ListMarkerType = "unknown"
)

// listPatterns matches the marker prefixes that identify a list item.
var listPatterns = []*regexp.Regexp{
	// Bullets.
	regexp.MustCompile(`^\s*[•·▪▫‣⁃]\s+`),
	regexp.MustCompile(`^\s*[*+\-]\s+`),
	regexp.MustCompile(`^\s*[▶►▷▸]\s+`),

	// Numbered.
	regexp.MustCompile(`^\s*\d+\.\s+`),
	regexp.MustCompile(`^\s*\d+\)\s+`),
	regexp.MustCompile(`^\s*\(\d+\)\s+`),
	regexp.MustCompile(`^\s*\[\d+\]\s+`),

	// Lettered.
	regexp.MustCompile(`^\s*[a-zA-Z]\.\s+`),
	regexp.MustCompile(`^\s*[a-zA-Z]\)\s+`),
	regexp.MustCompile(`^\s*\([a-zA-Z]\)\s+`),
	regexp.MustCompile(`^\s*\[[a-zA-Z]\]\s+`),

	// Roman numerals.
	regexp.MustCompile(`^\s*[ivxlcdm]+\.\s+`),
	regexp.MustCompile(`^\s*[IVXLCDM]+\.\s+`),
	regexp.MustCompile(`^\s*[ivxlcdm]+\)\s+`),
	regexp.MustCompile(`^\s*[IVXLCDM]+\)\s+`),
	regexp.MustCompile(`^\s*\([ivxlcdm]+\)\s+`),
	regexp.MustCompile(`^\s*\([IVXLCDM]+\)\s+`),
}

var (
	markerBulletRe   = regexp.MustCompile(`^\s*[•·▪▫‣⁃*+\-▶►▷▸]\s+`)
	markerNumberedRe = regexp.MustCompile(`^\s*(\d+[.)]|[(\[]\d+[)\]])\s+`)
	markerLetteredRe = regexp.MustCompile(`^\s*([a-zA-Z][.)]|[(\[][a-zA-Z][)\]])\s+`)
	markerRomanRe    = regexp.MustCompile(`^\s*([ivxlcdmIVXLCDM]+[.)]|[(\[][ivxlcdmIVXLCDM]+[)\]])\s+`)
)

// isListItem reports whether text starts with a recognized list marker.
func isListItem(text string) bool {
	if text == "" {
		return false
	}
	for _, re := range listPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// listMarkerType categorizes the marker. Single Roman letters read as
// lettered markers; only multi-letter numerals reach the roman class.
func listMarkerType(text string) ListMarkerType {
	switch {
	case markerBulletRe.MatchString(text):
		return MarkerBullet
	case markerNumberedRe.MatchString(text):
		return MarkerNumbered
	case markerLetteredRe.MatchString(text):
		return MarkerLettered
	case markerRomanRe.MatchString(text):
		return MarkerRoman
	default:
		return MarkerUnknown
	}
}
