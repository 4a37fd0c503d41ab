package enrichment

import (
	"strings"

	"github.com/mileusna/useragent"
)

// Device classifications attached to the browser metadata.
const (
	DeviceMobile  = "Mobile"
	DeviceDesktop = "Desktop"
)

// Browser derives the browser metadata mapping from a raw User-Agent string.
// An unparseable or empty UA yields nil; the submission simply carries no
// browser metadata in that case.
func Browser(uaString string) map[string]string {
	if strings.TrimSpace(uaString) == "" {
		return nil
	}

	ua := useragent.Parse(uaString)
	if ua.Name == "" {
		return nil
	}

	device := DeviceDesktop
	if ua.Mobile {
		device = DeviceMobile
	}

	version := ua.Name
	if ua.Version != "" {
		version = ua.Name + " " + ua.Version
	}

	return map[string]string{
		"operatingSystem": ua.OS,
		"browserVersion":  version,
		"device":          device,
	}
}
