package security

import (
	"net"
	"net/http"
	"strings"

	"toast/api/internal/models"
)

const (
	PlatformHeader = "X-Client-Platform"
	PlatformCookie = "client_platform"
)

// ClientInfo is stamped onto sessions at login.
type ClientInfo struct {
	IP        string
	Platform  models.Platform
	UserAgent string
}

func ParsePlatform(s string) models.Platform {
	switch p := models.Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case models.PlatformWeb, models.PlatformDesktop, models.PlatformMobile:
		return p
	default:
		return models.PlatformUnknown
	}
}

// NormalizeIP renders ip as a single-host network, e.g. 10.0.0.1/32.
// It returns "" for unparsable input.
func NormalizeIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return ""
	}
	if v4 := parsed.To4(); v4 != nil {
		return (&net.IPNet{IP: v4, Mask: net.CIDRMask(32, 32)}).String()
	}
	return (&net.IPNet{IP: parsed, Mask: net.CIDRMask(128, 128)}).String()
}

// ClientInfoFromRequest classifies the platform from the header, falling back
// to the cookie. clientIP is the already-resolved remote address.
func ClientInfoFromRequest(r *http.Request, clientIP string) ClientInfo {
	platform := r.Header.Get(PlatformHeader)
	if platform == "" {
		if cookie, err := r.Cookie(PlatformCookie); err == nil {
			platform = cookie.Value
		}
	}

	return ClientInfo{
		IP:        NormalizeIP(clientIP),
		Platform:  ParsePlatform(platform),
		UserAgent: strings.Join(r.Header.Values("User-Agent"), ", "),
	}
}
