package classifier

import (
	"errors"
	"testing"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/stretchr/testify/assert"
)

func okProbe(code int, body string) models.ProbeResult {
	return models.ProbeResult{Succeeded: true, StatusCode: code, Body: body}
}

func headRules() models.RuleSet {
	return models.RuleSet{ExpectedContent: "<head>", ExpectedStatus: 200}
}

func TestClassify_TransportFailureIsAlwaysDown(t *testing.T) {
	failed := models.ProbeResult{
		Succeeded: false,
		Err:       errorwrapper.NewTransportError("https://example.com", "timeout", errors.New("deadline exceeded")),
	}

	ruleSets := []models.RuleSet{
		{},
		headRules(),
		{ExpectedStatus: 200},
		{DeadChecks: []models.DeadCheck{{Keyword: "x", Override: models.StatusUp}}},
		{ExpectedContent: "", DeadChecks: []models.DeadCheck{{Keyword: "maintenance", Override: models.StatusPartiallyUp}}},
	}

	for _, rules := range ruleSets {
		assert.Equal(t, models.StatusDown, Classify(failed, rules))
	}
}

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		probe models.ProbeResult
		rules models.RuleSet
		want  models.Status
	}{
		{
			name:  "content and status match",
			probe: okProbe(200, "<html><head><title>ok</title></head></html>"),
			rules: headRules(),
			want:  models.StatusUp,
		},
		{
			name:  "content present with wrong status",
			probe: okProbe(503, "<head>maintenance page</head>"),
			rules: headRules(),
			want:  models.StatusPartiallyUp,
		},
		{
			name:  "content absent",
			probe: okProbe(200, "Under maintenance"),
			rules: headRules(),
			want:  models.StatusDown,
		},
		{
			name:  "dead check overrides",
			probe: okProbe(200, "Under maintenance"),
			rules: models.RuleSet{
				ExpectedContent: "<head>",
				ExpectedStatus:  200,
				DeadChecks:      []models.DeadCheck{{Keyword: "maintenance", Override: models.StatusDown}},
			},
			want: models.StatusDown,
		},
		{
			name:  "dead check can report partially up over a healthy page",
			probe: okProbe(200, "<head></head><div>degraded performance</div>"),
			rules: models.RuleSet{
				ExpectedContent: "<head>",
				ExpectedStatus:  200,
				DeadChecks:      []models.DeadCheck{{Keyword: "degraded performance", Override: models.StatusPartiallyUp}},
			},
			want: models.StatusPartiallyUp,
		},
		{
			name:  "nothing configured",
			probe: okProbe(200, "<head>"),
			rules: models.RuleSet{},
			want:  models.StatusUnknownStatus,
		},
		{
			name:  "empty body never matches expected content",
			probe: okProbe(200, ""),
			rules: headRules(),
			want:  models.StatusDown,
		},
		{
			name:  "content only, found",
			probe: okProbe(500, "<head>"),
			rules: models.RuleSet{ExpectedContent: "<head>"},
			want:  models.StatusUp,
		},
		{
			name:  "content only, missing",
			probe: okProbe(200, "<body>"),
			rules: models.RuleSet{ExpectedContent: "<head>"},
			want:  models.StatusDown,
		},
		{
			name:  "status only, match",
			probe: okProbe(200, ""),
			rules: models.RuleSet{ExpectedStatus: 200},
			want:  models.StatusUp,
		},
		{
			// Deliberate policy choice: an unset content check is not evaluated,
			// so a status mismatch alone is not promoted to Down or PartiallyUp.
			name:  "status only, mismatch stays unknown",
			probe: okProbe(503, "<head>"),
			rules: models.RuleSet{ExpectedStatus: 200},
			want:  models.StatusUnknownStatus,
		},
		{
			name:  "whitespace in the page is normalized",
			probe: okProbe(200, "<p>Service\n\t   Unavailable</p>"),
			rules: models.RuleSet{
				ExpectedContent: "<p>",
				DeadChecks:      []models.DeadCheck{{Keyword: "service unavailable", Override: models.StatusDown}},
			},
			want: models.StatusDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.probe, tt.rules))
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	probe := okProbe(200, "<head>scheduled maintenance, partial outage</head>")
	rules := models.RuleSet{
		ExpectedContent: "<head>",
		ExpectedStatus:  200,
		DeadChecks: []models.DeadCheck{
			{Keyword: "maintenance", Override: models.StatusPartiallyUp},
			{Keyword: "outage", Override: models.StatusDown},
		},
	}
	assert.Equal(t, models.StatusPartiallyUp, Classify(probe, rules))

	rules.DeadChecks[0], rules.DeadChecks[1] = rules.DeadChecks[1], rules.DeadChecks[0]
	assert.Equal(t, models.StatusDown, Classify(probe, rules))
}

func TestClassify_SkipsNonMatchingRulesInOrder(t *testing.T) {
	probe := okProbe(200, "<head>outage</head>")
	rules := models.RuleSet{
		ExpectedContent: "<head>",
		ExpectedStatus:  200,
		DeadChecks: []models.DeadCheck{
			{Keyword: "maintenance", Override: models.StatusPartiallyUp},
			{Keyword: "outage", Override: models.StatusDown},
			{Keyword: "head", Override: models.StatusUnknownStatus},
		},
	}
	assert.Equal(t, models.StatusDown, Classify(probe, rules))
}

func TestClassify_CaseSensitivity(t *testing.T) {
	probe := okProbe(200, "DOWN FOR MAINTENANCE")

	insensitive := models.RuleSet{
		ExpectedContent: "DOWN",
		DeadChecks:      []models.DeadCheck{{Keyword: "maintenance", Override: models.StatusDown, CaseSensitive: false}},
	}
	assert.Equal(t, models.StatusDown, Classify(probe, insensitive))

	sensitive := models.RuleSet{
		ExpectedContent: "DOWN",
		DeadChecks:      []models.DeadCheck{{Keyword: "maintenance", Override: models.StatusDown, CaseSensitive: true}},
	}
	// The dead check no longer matches; the default rule finds "DOWN" and reports Up.
	assert.Equal(t, models.StatusUp, Classify(probe, sensitive))
}

func TestClassify_DeadCheckCaseFlagIsIndependentOfSiteFlag(t *testing.T) {
	probe := okProbe(200, "<HEAD>Maintenance</HEAD>")
	rules := models.RuleSet{
		ExpectedContent: "<HEAD>",
		CaseSensitive:   true,
		DeadChecks:      []models.DeadCheck{{Keyword: "maintenance", Override: models.StatusDown, CaseSensitive: false}},
	}
	assert.Equal(t, models.StatusDown, Classify(probe, rules))

	rules.DeadChecks[0].CaseSensitive = true
	assert.Equal(t, models.StatusUp, Classify(probe, rules))

	rules.ExpectedContent = "<head>"
	assert.Equal(t, models.StatusDown, Classify(probe, rules), "site-level case sensitivity applies to expected content")
}

func TestClassify_EmptyDeadChecksUseDefaultRule(t *testing.T) {
	probes := []models.ProbeResult{
		okProbe(200, "<head>maintenance</head>"),
		okProbe(503, "<head>maintenance</head>"),
		okProbe(200, "maintenance"),
	}
	for _, probe := range probes {
		withNil := models.RuleSet{ExpectedContent: "<head>", ExpectedStatus: 200}
		withEmpty := models.RuleSet{ExpectedContent: "<head>", ExpectedStatus: 200, DeadChecks: []models.DeadCheck{}}

		page := newBody(probe.Body)
		assert.Equal(t, evaluateDefault(page, probe.StatusCode, withNil), Classify(probe, withNil))
		assert.Equal(t, Classify(probe, withNil), Classify(probe, withEmpty))
	}
}

func TestClassify_EmptyKeywordNeverMatches(t *testing.T) {
	probe := okProbe(200, "<head>")
	rules := models.RuleSet{
		ExpectedContent: "<head>",
		ExpectedStatus:  200,
		DeadChecks:      []models.DeadCheck{{Keyword: "", Override: models.StatusDown}},
	}
	assert.Equal(t, models.StatusUp, Classify(probe, rules))
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", normalizeWhitespace("a \n\t b\r\nc"))
	assert.Equal(t, " lead", normalizeWhitespace("   lead"))
	assert.Equal(t, "", normalizeWhitespace(""))
}

func TestClassify_WhitespaceOnlyRulesNeverMatch(t *testing.T) {
	probe := okProbe(200, "<html><head>all good here</head></html>")

	rules := models.RuleSet{
		ExpectedContent: "<head>",
		ExpectedStatus:  200,
		DeadChecks:      []models.DeadCheck{{Keyword: "   ", Override: models.StatusDown}},
	}
	assert.Equal(t, models.StatusUp, Classify(probe, rules))

	contentOnly := models.RuleSet{ExpectedContent: " \n "}
	assert.False(t, contentOnly.HasContentCheck())
	assert.Equal(t, models.StatusUnknownStatus, Classify(probe, contentOnly))

	withStatus := models.RuleSet{ExpectedContent: "  ", ExpectedStatus: 200}
	assert.Equal(t, models.StatusUp, Classify(probe, withStatus), "whitespace content is treated as unset")
}
