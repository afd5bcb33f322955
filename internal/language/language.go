// Package language normalizes the language codes found in scene lists and
// container metadata. Audio-track selection and the languages report both
// need ISO 639-1 and 639-2 forms to agree, so all conversions live here.
package language

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	code3   string // ISO 639-2 primary (3-letter)
	alt3    string // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string
	word    string // full word form (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", "English", "english"},
	{"es", "spa", "", "Spanish", "spanish"},
	{"fr", "fra", "fre", "French", "french"},
	{"de", "deu", "ger", "German", "german"},
	{"it", "ita", "", "Italian", "italian"},
	{"pt", "por", "", "Portuguese", "portuguese"},
	{"ja", "jpn", "", "Japanese", "japanese"},
	{"ko", "kor", "", "Korean", "korean"},
	{"zh", "zho", "chi", "Chinese", "chinese"},
	{"ru", "rus", "", "Russian", "russian"},
	{"ar", "ara", "", "Arabic", "arabic"},
	{"hi", "hin", "", "Hindi", "hindi"},
	{"nl", "nld", "dut", "Dutch", "dutch"},
	{"pl", "pol", "", "Polish", "polish"},
	{"sv", "swe", "", "Swedish", "swedish"},
	{"da", "dan", "", "Danish", "danish"},
	{"no", "nor", "", "Norwegian", "norwegian"},
	{"fi", "fin", "", "Finnish", "finnish"},
	{"el", "ell", "gre", "Greek", "greek"},
	{"tr", "tur", "", "Turkish", "turkish"},
}

var index map[string]*entry

func init() {
	index = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		index[e.code2] = e
		index[e.code3] = e
		if e.alt3 != "" {
			index[e.alt3] = e
		}
		index[e.word] = e
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	return index[code]
}

// ToISO2 converts any recognized code or word form to ISO 639-1. Unknown
// two-letter codes pass through; anything else unrecognized returns "".
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// ToISO3 converts any recognized code to ISO 639-2. Unknown three-letter
// codes pass through; anything else unrecognized returns "und".
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

// Matches reports whether two codes name the same language in any
// recognized form, including alternate three-letter spellings like
// "fre" against "fra".
func Matches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	ea, eb := lookup(a), lookup(b)
	if ea != nil && ea == eb {
		return true
	}
	// Unrecognized codes still match on the 2/3-letter prefix rule
	// ("en" against a bare "eng" tag).
	if len(a) == 2 && len(b) == 3 && strings.HasPrefix(b, a) {
		return true
	}
	if len(a) == 3 && len(b) == 2 && strings.HasPrefix(a, b) {
		return true
	}
	return false
}

var titleCaser = cases.Title(language.Und)

// DisplayName returns a human-readable name for any recognized code.
// Unrecognized input comes back title-cased; empty input is "Unknown".
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return titleCaser.String(strings.ToLower(code))
}

// ExtractFromTags pulls a normalized language value out of stream metadata
// tags, checking the tag keys ffmpeg and mkvtoolnix commonly emit.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	for _, key := range []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"} {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\x00", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}
