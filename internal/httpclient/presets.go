package httpclient

import (
	"runtime"

	"github.com/google/uuid"
)

// Header preset names accepted by HTTPClientConfig.HeaderPreset.
const (
	PresetNone        = "none"
	PresetFirefoxMin  = "firefox_min"
	PresetFirefoxFull = "firefox_full"
	PresetChromeMin   = "chrome_min"
	PresetChromeFull  = "chrome_full"
	PresetCurl        = "curl"
	PresetPostmanMin  = "postman_min"
	PresetPostmanFull = "postman_full"
)

const (
	chromeUserAgent  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"
	chromeAccept     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"
	browserAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	postmanUserAgent = "PostmanRuntime/7.49.0"
)

// Accept-Encoding is left to net/http so compressed bodies are decoded transparently.
var headerPresets = map[string]func() map[string]string{
	PresetNone: func() map[string]string { return map[string]string{} },
	PresetFirefoxMin: func() map[string]string {
		return map[string]string{
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
			"Accept":     browserAccept,
			"Connection": "keep-alive",
		}
	},
	PresetFirefoxFull: func() map[string]string {
		return map[string]string{
			"User-Agent":                "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:144.0) Gecko/20100101 Firefox/144.0",
			"Accept":                    browserAccept,
			"Accept-Language":           "en,en-GB;q=0.8,en-US;q=0.5,en;q=0.3",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-User":            "?1",
			"Priority":                  "u=0, i",
		}
	},
	PresetChromeMin: func() map[string]string {
		return map[string]string{
			"Connection": "keep-alive",
			"User-Agent": chromeUserAgent,
			"Accept":     chromeAccept,
		}
	},
	PresetChromeFull: func() map[string]string {
		return map[string]string{
			"Connection":                "keep-alive",
			"sec-ch-ua":                 `"Chromium";v="140", "Not=A?Brand";v="24", "Google Chrome";v="140"`,
			"sec-ch-ua-mobile":          "?0",
			"sec-ch-ua-platform":        platformHint(),
			"Upgrade-Insecure-Requests": "1",
			"User-Agent":                chromeUserAgent,
			"Accept":                    chromeAccept,
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-User":            "?1",
			"Sec-Fetch-Dest":            "document",
			"Accept-Language":           "en-GB,en;q=0.9,fr-FR;q=0.8,fr;q=0.7,de-AT;q=0.6,de;q=0.5,en-US;q=0.4",
		}
	},
	PresetCurl: func() map[string]string {
		return map[string]string{
			"User-Agent": "curl/8.5.0",
			"Accept":     "*/*",
		}
	},
	PresetPostmanMin: func() map[string]string {
		return map[string]string{
			"User-Agent": postmanUserAgent,
			"Accept":     "*/*",
		}
	},
	PresetPostmanFull: func() map[string]string {
		return map[string]string{
			"User-Agent":    postmanUserAgent,
			"Accept":        "*/*",
			"Cache-Control": "no-cache",
			"Postman-Token": uuid.NewString(),
			"Connection":    "keep-alive",
		}
	},
}

// PresetHeaders returns a fresh copy of the named header set.
// Presets carrying per-request tokens generate a new token on every call.
func PresetHeaders(name string) (map[string]string, bool) {
	if name == "" {
		name = PresetNone
	}
	build, ok := headerPresets[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// HasPreset reports whether name is a known header preset.
func HasPreset(name string) bool {
	if name == "" {
		return true
	}
	_, ok := headerPresets[name]
	return ok
}

func platformHint() string {
	switch runtime.GOOS {
	case "windows":
		return `"Windows"`
	case "darwin":
		return `"macOS"`
	default:
		return `"Linux"`
	}
}
