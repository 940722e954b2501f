package events

import (
	"net/url"
	"strings"
)

// ReferrerHost extracts the bare host from a raw referrer URL. Scheme,
// path, query and port are stripped. Returns "" when the referrer is
// empty or unparseable, which downstream code treats as direct traffic.
func ReferrerHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// SourceKey maps a referrer hostname to the traffic-source key used by
// the top-sources breakdown: "Direct" for empty hosts, the host itself
// otherwise.
func SourceKey(host string) string {
	if host == "" {
		return DirectSource
	}
	return host
}

var tabletMarkers = []string{"tablet", "ipad", "kindle", "playbook", "silk"}

var mobileMarkers = []string{"mobile", "phone", "iphone", "android", "ipod", "blackberry", "windows phone"}

// DeviceCategory folds a raw device string into the fixed category enum
// {desktop, mobile, tablet}. Missing or unrecognized values default to
// desktop.
func DeviceCategory(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return DeviceDesktop
	}
	for _, marker := range tabletMarkers {
		if strings.Contains(lower, marker) {
			return DeviceTablet
		}
	}
	for _, marker := range mobileMarkers {
		if strings.Contains(lower, marker) {
			return DeviceMobile
		}
	}
	return DeviceDesktop
}
