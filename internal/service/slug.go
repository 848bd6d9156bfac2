package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)
	slugSymbols      = strings.NewReplacer("&", " and ", "@", " at ", "%", " percent ", "+", " plus ")
)

// Slugify derives the URL key of a post from its title. The result only
// contains lower-case ASCII letters, digits and single hyphens.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, title)
	if err != nil {
		result = title
	}

	result = unidecode.Unidecode(result)
	result = slugSymbols.Replace(result)
	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, "'", "")
	result = slugInvalidChars.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
