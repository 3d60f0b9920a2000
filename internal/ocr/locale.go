package ocr

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/nao1215/pageocr/internal/apperr"
)

// ErrInvalidLocale is returned for a locale that is not a BCP-47 tag.
var ErrInvalidLocale = errors.New("invalid locale")

// ParseLocales parses BCP-47 locale strings, dropping blanks and duplicates
// while keeping order. A nil result means "engine default".
func ParseLocales(values []string) ([]language.Tag, error) {
	var tags []language.Tag
	seen := make(map[language.Tag]bool, len(values))

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		// Accept POSIX style en_US as well as en-US.
		tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
		if err != nil {
			return nil, apperr.Configuration("parse locales", fmt.Errorf("%w %q: %w", ErrInvalidLocale, v, err))
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags, nil
}
