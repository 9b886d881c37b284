package detector

import (
	"net"
	"strings"
)

const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

var (
	botKeywords     = []string{"bot", "crawler", "spider", "scraper", "curl", "wget", "python-requests"}
	tabletKeywords  = []string{"tablet", "ipad"}
	mobileKeywords  = []string{"mobile", "android", "iphone", "ipod", "blackberry", "windows phone"}
	desktopKeywords = []string{"mozilla", "windows", "macintosh", "x11"}
)

// DetectDeviceType classifies a user agent string. Bots are checked first
// since crawler agents often also claim a desktop browser. Tablets before
// mobile: iPad agents contain "mobile".
func DetectDeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return DeviceUnknown
	}

	if containsAny(ua, botKeywords) {
		return DeviceBot
	}

	if containsAny(ua, tabletKeywords) {
		return DeviceTablet
	}

	if containsAny(ua, mobileKeywords) {
		return DeviceMobile
	}

	if containsAny(ua, desktopKeywords) {
		return DeviceDesktop
	}

	return DeviceUnknown
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// ClientIP resolves the real client address behind a reverse proxy. The
// first entry of X-Forwarded-For wins, then X-Real-IP, then the connection
// remote address.
func ClientIP(remoteAddr, xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		first, _, _ := strings.Cut(xForwardedFor, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xRealIP != "" {
		return xRealIP
	}

	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}

	return remoteAddr
}
