package renault

import (
	"fmt"
	"strings"
)

// Settings carries the remote endpoints and api keys for one locale. The
// provider publishes this mapping in its mobile app configuration files;
// the values below ship as defaults and can be overridden from configuration.
type Settings struct {
	Locale         string
	Country        string
	GigyaURL       string
	GigyaAPIKey    string
	KamereonURL    string
	KamereonAPIKey string
}

const (
	gigyaEU    = "https://accounts.eu1.gigya.com"
	kamereonEU = "https://api-wired-prod-1-euw1.wrd-aws.com"

	kamereonAPIKey = "VAX7XYKGfa92yMvXculCkEFyfZbuM7Ss"
)

var settings = map[string]Settings{
	"fr_FR": {GigyaAPIKey: "3_4LKbCcMMcvjDm3X89LU4z4mNKYKdl_W0oD9w-Jvih21WqgJKtFZAnb9YdUgWT9_a"},
	"de_DE": {GigyaAPIKey: "3_7PLksOyBRkHv126x5WhHb-5pqC1qFR8pQjxSeLB6nhAnPERTUlwnYoznHSxwX668"},
	"en_GB": {GigyaAPIKey: "3_e8d4g4SE_Fo8ahyHwwP7ohLGZ79HKNN2T8NjQqoNnk6Epj6ilyYwKdHUyCw3wuxz"},
	"es_ES": {GigyaAPIKey: "3_DyMiOwEaxLcPdBTu63Gv3hlhvLaLbW3ufvjHLeuU8U5bx3zx19t5rEl2hBB4SbNi"},
	"it_IT": {GigyaAPIKey: "3_js8th3jdmCWV86fKR3SXQWvXGKbHoWFv8NAgRbH7FnIBsi_XvCpN_rtLcI07uNuq"},
	"nl_NL": {GigyaAPIKey: "3_ZK9x38N8pzF6kiJyy4dkmvhGjGSCAGg_AuONJHsrfNuVFJ44P5u3y2uqKJWT5gYX"},
}

// SettingsForLocale resolves the endpoint settings for a locale such as
// "fr_FR". Overrides replace individual defaults where non-empty.
func SettingsForLocale(locale string, overrides Settings) (Settings, error) {
	s, ok := settings[locale]
	if !ok {
		return Settings{}, fmt.Errorf("unsupported locale: %s", locale)
	}

	s.Locale = locale
	s.Country = strings.ToUpper(locale[strings.Index(locale, "_")+1:])
	s.GigyaURL = gigyaEU
	s.KamereonURL = kamereonEU
	s.KamereonAPIKey = kamereonAPIKey

	if overrides.Country != "" {
		s.Country = overrides.Country
	}
	if overrides.GigyaURL != "" {
		s.GigyaURL = overrides.GigyaURL
	}
	if overrides.GigyaAPIKey != "" {
		s.GigyaAPIKey = overrides.GigyaAPIKey
	}
	if overrides.KamereonURL != "" {
		s.KamereonURL = overrides.KamereonURL
	}
	if overrides.KamereonAPIKey != "" {
		s.KamereonAPIKey = overrides.KamereonAPIKey
	}

	return s, nil
}
