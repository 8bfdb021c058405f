package notifier

import (
	"errors"
	"net/http"
	"time"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/bwmarrin/discordgo"
)

// Discord JSON error codes that matter for status messages.
const (
	codeUnknownChannel = discordgo.ErrCodeUnknownChannel // 10003
	codeUnknownMessage = discordgo.ErrCodeUnknownMessage // 10008
	codeUnknownWebhook = discordgo.ErrCodeUnknownWebhook // 10015
)

// classifyStatus maps an HTTP failure onto the error taxonomy.
// Errors name the destination with any webhook token redacted.
// Only an edit can report a missing message; a 404 on send means the
// destination itself is gone, which retrying cannot fix.
func classifyStatus(op string, handle models.MessageHandle, status, code int, message string, retryAfter time.Duration, cause error) error {
	destination := models.RedactDestination(handle.Destination)
	switch {
	case code == codeUnknownMessage:
		return errorwrapper.NewRemoteMessageNotFound(destination, handle.MessageID)
	case status == http.StatusNotFound && op == opEdit && code != codeUnknownChannel && code != codeUnknownWebhook:
		return errorwrapper.NewRemoteMessageNotFound(destination, handle.MessageID)
	case status == http.StatusTooManyRequests || status >= 500:
		return errorwrapper.NewRemoteTransientError(op, status, retryAfter, cause)
	default:
		if message == "" {
			message = http.StatusText(status)
		}
		return errorwrapper.NewRemoteError(op, status, code, message)
	}
}

// classifyDiscordgoError translates errors returned by discordgo REST calls.
func classifyDiscordgoError(op string, handle models.MessageHandle, err error) error {
	var rateErr *discordgo.RateLimitError
	if errors.As(err, &rateErr) {
		var retryAfter time.Duration
		if rateErr.RateLimit != nil && rateErr.RateLimit.TooManyRequests != nil {
			retryAfter = rateErr.RateLimit.TooManyRequests.RetryAfter
		}
		return errorwrapper.NewRemoteTransientError(op, http.StatusTooManyRequests, retryAfter, err)
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		status := 0
		if restErr.Response != nil {
			status = restErr.Response.StatusCode
		}
		code, message := 0, ""
		if restErr.Message != nil {
			code, message = restErr.Message.Code, restErr.Message.Message
		}
		return classifyStatus(op, handle, status, code, message, 0, err)
	}

	// No HTTP answer at all: network failure or the call timed out.
	return errorwrapper.NewRemoteTransientError(op, 0, 0, err)
}
