package services

import (
	"regexp"
	"strings"

	"dynlink/internal/models"
)

var botPattern = regexp.MustCompile(`(?i)bot|spider|crawl|preview|facebookexternalhit|slurp|whatsapp|embedly`)

// IsBot reports whether the user agent belongs to a crawler or link-preview fetcher.
func IsBot(userAgent string) bool {
	return botPattern.MatchString(userAgent)
}

type deviceRule struct {
	pattern *regexp.Regexp
	device  models.DeviceType
}

// Evaluated top to bottom; iOS wins over Android when a UA mentions both.
var deviceRules = []deviceRule{
	{pattern: regexp.MustCompile(`iphone|ipad|ipod`), device: models.DeviceIOS},
	{pattern: regexp.MustCompile(`android`), device: models.DeviceAndroid},
}

// ClassifyDevice maps a user agent to Desktop, Android or iOS. Desktop is the default.
func ClassifyDevice(userAgent string) models.DeviceType {
	ua := strings.ToLower(userAgent)
	for _, rule := range deviceRules {
		if rule.pattern.MatchString(ua) {
			return rule.device
		}
	}
	return models.DeviceDesktop
}

// SelectDestination picks the device's URL, falling back to desktop.
func SelectDestination(links models.Destinations, device models.DeviceType) (string, bool) {
	if dest := links.For(device); dest != "" {
		return dest, true
	}
	if links.Desktop != "" {
		return links.Desktop, true
	}
	return "", false
}
