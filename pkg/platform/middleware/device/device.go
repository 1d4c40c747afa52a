// Package device derives a human-readable device label for session records.
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent renders a user agent as "<browser> on <os>", for example
// "Chrome on Intel Mac OS X 10_15_7".
func ParseUserAgent(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return unknownDevice
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	system := ua.OS()
	if system == "" {
		system = ua.Platform()
	}
	if system == "" {
		system = "Unknown OS"
	}
	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, system))
}

// Label prefers the self-reported device name and falls back to the parsed
// user agent.
func Label(reported, userAgent string) string {
	if reported = strings.TrimSpace(reported); reported != "" {
		return reported
	}
	return ParseUserAgent(userAgent)
}
