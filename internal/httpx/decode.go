package httpx

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// decodeHTML converts body to UTF-8 using the Content-Type charset, a BOM or
// a <meta> declaration. Undeclared bodies that are valid UTF-8 pass through.
func decodeHTML(body []byte, contentType string) (string, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	// windows-1252 without certainty is the library's fallback guess, made
	// from the first 1024 bytes only.
	if !certain && name == "windows-1252" && utf8.Valid(body) {
		return string(body), nil
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(decoded), nil
}
