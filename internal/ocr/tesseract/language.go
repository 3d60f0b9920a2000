package tesseract

import "golang.org/x/text/language"

// scriptCodes covers languages whose traineddata is split by script.
var scriptCodes = map[string]map[string]string{
	"zh": {"Hans": "chi_sim", "Hant": "chi_tra"},
	"sr": {"Cyrl": "srp", "Latn": "srp_latn"},
	"az": {"Latn": "aze", "Cyrl": "aze_cyrl"},
	"uz": {"Latn": "uzb", "Cyrl": "uzb_cyrl"},
}

// LanguageCodes maps locales to tesseract traineddata names, keeping order
// and dropping duplicates. Most languages use the ISO 639-2/T code of
// the base language.
func LanguageCodes(tags []language.Tag) []string {
	codes := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))

	for _, tag := range tags {
		code := languageCode(tag)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

func languageCode(tag language.Tag) string {
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	if byScript, ok := scriptCodes[base.String()]; ok {
		script, _ := tag.Script()
		if code, ok := byScript[script.String()]; ok {
			return code
		}
	}
	return base.ISO3()
}
