package utils

import (
	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile or desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
}

// ParseUserAgent parses a User-Agent string into coarse device info for
// request logging.
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
		}
	}

	parser := ua.New(userAgent)

	info := DeviceInfo{
		DeviceType: "desktop",
		IsBot:      parser.Bot(),
	}
	if parser.Mobile() {
		info.DeviceType = "mobile"
	}

	if osInfo := parser.OSInfo(); osInfo.Name != "" {
		info.OS = osInfo.Name
		if osInfo.Version != "" {
			info.OS += " " + osInfo.Version
		}
	} else {
		info.OS = "Unknown"
	}

	if name, _ := parser.Browser(); name != "" {
		info.Browser = name
	} else {
		info.Browser = "Unknown"
	}

	return info
}
