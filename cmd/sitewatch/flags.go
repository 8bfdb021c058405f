package main

import (
	"flag"
	"io"
)

// AppFlags holds command line overrides. Empty values leave the configuration untouched.
type AppFlags struct {
	GlobalConfigFile string
	SitesFile        string
	Mode             string
	OutputMode       string
}

// ParseFlags parses args (without the program name).
func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("sitewatch", flag.ContinueOnError)
	fs.SetOutput(output)

	globalConfigFile := fs.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := fs.String("c", "", "Alias for -config")

	sitesFile := fs.String("sites", "", "Path to the sites file (overrides monitor_config.sites_file)")
	sitesFileAlias := fs.String("s", "", "Alias for -sites")

	modeFlag := fs.String("mode", "", "Mode to run the tool: onetime or continuous (overrides config file if set)")
	modeFlagAlias := fs.String("m", "", "Alias for -mode")

	outputFlag := fs.String("output", "", "Message format: raw, markdown or embed (overrides config file if set)")
	outputFlagAlias := fs.String("o", "", "Alias for -output")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}

	return AppFlags{
		GlobalConfigFile: firstNonEmpty(*globalConfigFile, *globalConfigFileAlias),
		SitesFile:        firstNonEmpty(*sitesFile, *sitesFileAlias),
		Mode:             firstNonEmpty(*modeFlag, *modeFlagAlias),
		OutputMode:       firstNonEmpty(*outputFlag, *outputFlagAlias),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
