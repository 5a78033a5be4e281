package blockwall

import (
	"bytes"
	"net/http"
	"strings"
)

// Detector inspects an HTTP response and reports whether a bot-protection
// vendor blocked or challenged the fetch, and which one. Detection only
// refines the diagnostic attached to a failed fetch; it never changes
// whether the fetch counts as failed.
type Detector func(statusCode int, headers http.Header, body []byte) (detected bool, vendor string)

// DefaultDetectors returns the standard list of vendors seen in front of
// news sites.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCloudflare,
		detectAkamai,
		detectDataDome,
		detectPerimeterX,
	}
}

// Identify runs the response through the detectors and returns the first
// vendor that matches, or "" if none do.
func Identify(statusCode int, headers http.Header, body []byte, detectors []Detector) string {
	for _, d := range detectors {
		if detected, vendor := d(statusCode, headers, body); detected {
			return vendor
		}
	}
	return ""
}

func detectCloudflare(statusCode int, headers http.Header, body []byte) (bool, string) {
	// 403 and 503 are the usual challenge statuses.
	if statusCode != http.StatusForbidden && statusCode != http.StatusServiceUnavailable {
		return false, ""
	}

	if strings.Contains(strings.ToLower(headers.Get("Server")), "cloudflare") {
		return true, "Cloudflare"
	}

	if bytes.Contains(body, []byte("cf-browser-verification")) ||
		bytes.Contains(body, []byte("cf-turnstile")) ||
		bytes.Contains(body, []byte("Attention Required! | Cloudflare")) {
		return true, "Cloudflare"
	}
	return false, ""
}

func detectAkamai(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden {
		return false, ""
	}

	if strings.Contains(strings.ToLower(headers.Get("Server")), "akamai") {
		return true, "Akamai"
	}

	// Akamai's generic block page carries a "Reference #" marker.
	if bytes.Contains(body, []byte("Reference #")) && bytes.Contains(body, []byte("Access Denied")) {
		return true, "Akamai"
	}
	return false, ""
}

func detectDataDome(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden {
		return false, ""
	}

	if strings.Contains(strings.ToLower(headers.Get("Server")), "datadome") {
		return true, "DataDome"
	}
	if headers.Get("X-DataDome") != "" || headers.Get("X-DataDome-Response") != "" {
		return true, "DataDome"
	}
	if bytes.Contains(body, []byte("geo.captcha-delivery.com")) || bytes.Contains(body, []byte("datadome")) {
		return true, "DataDome"
	}
	return false, ""
}

func detectPerimeterX(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden {
		return false, ""
	}

	if headers.Get("X-Px-Captcha") != "" {
		return true, "PerimeterX"
	}
	if bytes.Contains(body, []byte("client.perimeterx.net")) ||
		bytes.Contains(body, []byte("px-captcha")) ||
		bytes.Contains(body, []byte("_pxBlock")) {
		return true, "PerimeterX"
	}
	return false, ""
}
