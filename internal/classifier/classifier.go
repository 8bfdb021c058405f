// Package classifier turns a probe result and a site's rules into a status.
// It performs no I/O and keeps no state.
package classifier

import (
	"github.com/aleister1102/sitewatch/internal/models"
)

// Classify derives the status of a site from one probe result.
//
// Evaluation order:
//  1. transport failure is Down, whatever the rules say;
//  2. dead checks in declaration order, first match wins;
//  3. the default content/status comparison.
func Classify(probe models.ProbeResult, rules models.RuleSet) models.Status {
	if !probe.Succeeded {
		return models.StatusDown
	}

	page := newBody(probe.Body)

	if status, matched := matchDeadChecks(page, rules.DeadChecks); matched {
		return status
	}

	return evaluateDefault(page, probe.StatusCode, rules)
}

func matchDeadChecks(page *body, checks []models.DeadCheck) (models.Status, bool) {
	for _, check := range checks {
		if page.contains(check.Keyword, check.CaseSensitive) {
			return check.Override, true
		}
	}
	return "", false
}

func evaluateDefault(page *body, statusCode int, rules models.RuleSet) models.Status {
	checkContent := rules.HasContentCheck()
	checkStatus := rules.HasStatusCheck()

	switch {
	case checkContent && checkStatus:
		if !page.contains(rules.ExpectedContent, rules.CaseSensitive) {
			return models.StatusDown
		}
		if statusCode == rules.ExpectedStatus {
			return models.StatusUp
		}
		return models.StatusPartiallyUp

	case checkContent:
		if page.contains(rules.ExpectedContent, rules.CaseSensitive) {
			return models.StatusUp
		}
		return models.StatusDown

	case checkStatus:
		// Content is not evaluated here, so a mismatched code is not ranked.
		if statusCode == rules.ExpectedStatus {
			return models.StatusUp
		}
		return models.StatusUnknownStatus

	default:
		return models.StatusUnknownStatus
	}
}
