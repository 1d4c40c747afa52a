// Package email holds small helpers for actor e-mail addresses.
package email

import (
	"strings"
	"unicode"
)

// DisplayName derives a display name from the local part of an address:
// "jane.van-dyke@example.org" becomes "Jane Van Dyke". It returns "" when
// the local part has no usable words.
func DisplayName(address string) string {
	localPart := strings.TrimSpace(address)
	if at := strings.IndexByte(localPart, '@'); at >= 0 {
		localPart = localPart[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+' || unicode.IsDigit(r)
	})
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

// Valid reports whether address has a non-empty local part and a dotted
// domain. It is a shape check, not deliverability.
func Valid(address string) bool {
	local, domain, ok := strings.Cut(address, "@")
	if !ok || local == "" || strings.ContainsAny(address, " \t\r\n") {
		return false
	}
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1 && !strings.Contains(domain, "@")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
