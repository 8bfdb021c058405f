package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/models"
	"gopkg.in/yaml.v3"
)

// idString accepts both quoted and bare values. Discord snowflakes are often
// written as JSON numbers, which do not survive a float64 round trip.
type idString string

func (s *idString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = idString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", string(data))
	}
	*s = idString(num.String())
	return nil
}

func (s *idString) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", value.Line)
	}
	*s = idString(value.Value)
	return nil
}

type deadCheckEntry struct {
	Keyword       *string `json:"keyword" yaml:"keyword"`
	Response      *string `json:"response" yaml:"response"`
	CaseSensitive *bool   `json:"case_sensitive" yaml:"case_sensitive"`
}

func (d deadCheckEntry) isEmpty() bool {
	return d.Keyword == nil && d.Response == nil && d.CaseSensitive == nil
}

type siteEntry struct {
	Name            string           `json:"name" yaml:"name" validate:"required"`
	URL             string           `json:"url" yaml:"url" validate:"required,http_url"`
	Channel         idString         `json:"channel" yaml:"channel" validate:"required"`
	ExpectedContent *string          `json:"expected_content" yaml:"expected_content"`
	ExpectedStatus  *int             `json:"expected_status" yaml:"expected_status" validate:"omitempty,min=0,max=599"`
	CaseSensitive   *bool            `json:"case_sensitive" yaml:"case_sensitive"`
	DeadChecks      []deadCheckEntry `json:"dead_checks" yaml:"dead_checks"`
}

// LoadSites reads and validates the sites file. Any problem, in any entry,
// fails the whole file with a ConfigurationError listing all of them.
func LoadSites(path string) ([]models.Site, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, errorwrapper.NewConfigurationError(path, []string{err.Error()}, err)
	}
	return ParseSites(data, path)
}

// ParseSites decodes a JSON or YAML list of sites; path picks the format and labels errors.
func ParseSites(data []byte, path string) ([]models.Site, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errorwrapper.NewConfigurationError(path, []string{"sites file is empty"}, nil)
	}

	var entries []siteEntry
	var err error
	if isYAMLFile(filepath.Ext(path)) {
		err = yaml.Unmarshal(data, &entries)
	} else {
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, errorwrapper.NewConfigurationError(path, []string{"expected a list of site objects: " + err.Error()}, err)
	}
	if len(entries) == 0 {
		return nil, errorwrapper.NewConfigurationError(path, []string{"no sites configured"}, nil)
	}

	validate := newValidator()
	sites := make([]models.Site, 0, len(entries))
	seen := make(map[string]int, len(entries))
	var problems []string

	for i, entry := range entries {
		label := fmt.Sprintf("site %d", i)
		if entry.Name != "" {
			label = fmt.Sprintf("site %d (%s)", i, entry.Name)
		}

		entryProblems := validationProblems(validate.Struct(entry), "siteEntry.")
		site, convProblems := entry.toSite()
		entryProblems = append(entryProblems, convProblems...)

		if len(entryProblems) == 0 {
			id := site.ID()
			if first, dup := seen[id]; dup {
				entryProblems = append(entryProblems, fmt.Sprintf("same name, url and channel as site %d", first))
			} else {
				seen[id] = i
			}
		}

		for _, p := range entryProblems {
			problems = append(problems, label+": "+p)
		}
		if len(entryProblems) == 0 {
			sites = append(sites, site)
		}
	}

	if len(problems) > 0 {
		return nil, errorwrapper.NewConfigurationError(path, problems, nil)
	}
	return sites, nil
}

func (e siteEntry) toSite() (models.Site, []string) {
	var problems []string

	rules := models.RuleSet{}
	if e.ExpectedContent != nil {
		if *e.ExpectedContent != "" && strings.TrimSpace(*e.ExpectedContent) == "" {
			problems = append(problems, "expected_content: must not be only whitespace")
		}
		rules.ExpectedContent = *e.ExpectedContent
	}
	if e.ExpectedStatus != nil {
		if code := *e.ExpectedStatus; code != 0 && (code < 100 || code > 599) {
			problems = append(problems, fmt.Sprintf("expected_status: %d is not an HTTP status code (use 100-599, or 0 for no check)", code))
		}
		rules.ExpectedStatus = *e.ExpectedStatus
	}
	if e.CaseSensitive != nil {
		rules.CaseSensitive = *e.CaseSensitive
	}

	for j, dc := range e.DeadChecks {
		if dc.isEmpty() {
			continue
		}
		check, err := dc.toDeadCheck()
		if err != nil {
			problems = append(problems, fmt.Sprintf("dead_checks[%d]: %v", j, err))
			continue
		}
		rules.DeadChecks = append(rules.DeadChecks, check)
	}

	return models.Site{
		Name:        strings.TrimSpace(e.Name),
		URL:         strings.TrimSpace(e.URL),
		Destination: strings.TrimSpace(string(e.Channel)),
		Rules:       rules,
	}, problems
}

func (d deadCheckEntry) toDeadCheck() (models.DeadCheck, error) {
	if d.Keyword == nil || strings.TrimSpace(*d.Keyword) == "" {
		return models.DeadCheck{}, fmt.Errorf("keyword is required and must not be only whitespace")
	}
	if d.Response == nil {
		return models.DeadCheck{}, fmt.Errorf("response is required")
	}
	status, ok := models.ParseStatus(*d.Response)
	if !ok {
		names := make([]string, 0, len(models.AllStatuses))
		for _, s := range models.AllStatuses {
			names = append(names, s.Label())
		}
		return models.DeadCheck{}, fmt.Errorf("unknown response '%s', expected one of %s", *d.Response, strings.Join(names, ", "))
	}

	check := models.DeadCheck{Keyword: *d.Keyword, Override: status}
	if d.CaseSensitive != nil {
		check.CaseSensitive = *d.CaseSensitive
	}
	return check, nil
}
