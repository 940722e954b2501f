// Package user_agent derives browser, operating system and device
// strings from a raw User-Agent header. It is a fallback for collector
// payloads that omit those fields; ordering of the checks matters
// because many agents embed competitor tokens.
package user_agent

import "strings"

// Client is the parsed view of one User-Agent string.
type Client struct {
	Browser         string
	OperatingSystem string
	Device          string
}

// Parse extracts browser, OS and device from a raw User-Agent value.
// Unrecognized agents come back as "Unknown"/"Unknown"/"desktop".
func Parse(raw string) Client {
	ua := strings.ToLower(strings.TrimSpace(raw))
	return Client{
		Browser:         browserOf(ua),
		OperatingSystem: operatingSystemOf(ua),
		Device:          deviceOf(ua),
	}
}

func browserOf(ua string) string {
	switch {
	case ua == "":
		return "Unknown"
	// Edge and Opera ship "Chrome" and "Safari" tokens, check them first.
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge/"):
		return "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return "Opera"
	case strings.Contains(ua, "samsungbrowser"):
		return "Samsung Internet"
	case strings.Contains(ua, "firefox/") || strings.Contains(ua, "fxios"):
		return "Firefox"
	case strings.Contains(ua, "crios"):
		return "Chrome"
	case strings.Contains(ua, "chrome/") || strings.Contains(ua, "chromium"):
		return "Chrome"
	case strings.Contains(ua, "safari/") && strings.Contains(ua, "version/"):
		return "Safari"
	case strings.Contains(ua, "msie") || strings.Contains(ua, "trident/"):
		return "Internet Explorer"
	default:
		return "Unknown"
	}
}

func operatingSystemOf(ua string) string {
	switch {
	case strings.Contains(ua, "windows phone"):
		return "Windows Phone"
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod"):
		return "iOS"
	case strings.Contains(ua, "mac os x") || strings.Contains(ua, "macintosh"):
		return "macOS"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "cros"):
		return "ChromeOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}

func deviceOf(ua string) string {
	switch {
	case strings.Contains(ua, "ipad"),
		strings.Contains(ua, "tablet"),
		strings.Contains(ua, "kindle"),
		strings.Contains(ua, "silk"):
		return "tablet"
	case strings.Contains(ua, "mobile"),
		strings.Contains(ua, "iphone"),
		strings.Contains(ua, "ipod"),
		strings.Contains(ua, "windows phone"),
		strings.Contains(ua, "android"):
		return "mobile"
	default:
		return "desktop"
	}
}
