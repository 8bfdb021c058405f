package config

const (
	// Mode values
	ModeOnetime    = "onetime"
	ModeContinuous = "continuous"

	// Monitor Defaults
	DefaultSitesFile                    = "sites.json"
	DefaultCheckIntervalSeconds         = 60
	DefaultMinDelayBetweenChecksSeconds = 10
	DefaultMaxConcurrentChecks          = 5
	DefaultShutdownTimeoutSeconds       = 30

	// Probe Defaults
	DefaultProbeTimeoutSeconds = 5
	DefaultHeaderPreset        = "firefox_min"
	DefaultMaxRedirects        = 10
	DefaultMaxContentSize      = 5 * 1024 * 1024
	DefaultResponseLogSize     = 500

	// Notification Defaults
	TransportBot                  = "bot"
	TransportWebhook              = "webhook"
	DefaultRemoteTimeoutSeconds   = 10
	DefaultArtificialDelayMillis  = 0
	DefaultRevalidateAfterSeconds = 3600
	DefaultPresenceText           = "Watching websites"

	// Render Defaults
	OutputModeRaw       = "raw"
	OutputModeMarkdown  = "markdown"
	OutputModeEmbed     = "embed"
	DefaultOutputMode   = OutputModeEmbed
	DefaultTimeFormat   = "2006-01-02 15:04:05 MST"
	DefaultTimeZone     = "UTC"
	DefaultInlineFields = true

	// Storage Defaults
	DefaultSQLitePath = "data/sitewatch.sqlite3"

	// Metrics Defaults
	DefaultMetricsListenAddress = ":9310"
	DefaultMetricsPath          = "/metrics"
)

// KnownHeaderPresets lists the accepted probe_config.header_preset values.
var KnownHeaderPresets = []string{
	"none",
	"firefox_min", "firefox_full",
	"chrome_min", "chrome_full",
	"curl",
	"postman_min", "postman_full",
}
