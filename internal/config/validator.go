package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aleister1102/sitewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// cronParser accepts the standard five fields plus descriptors such as "@hourly" and "@every 5m".
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseCronSchedule parses monitor_config.cron_schedule.
func ParseCronSchedule(spec string) (cron.Schedule, error) {
	return cronParser.Parse(spec)
}

func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
			return true
		}
		return false
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		}
		return false
	})

	_ = validate.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case ModeOnetime, ModeContinuous:
			return true
		}
		return false
	})

	_ = validate.RegisterValidation("outputmode", func(fl validator.FieldLevel) bool {
		_, ok := NormalizeOutputMode(fl.Field().String())
		return ok
	})

	_ = validate.RegisterValidation("headerpreset", func(fl validator.FieldLevel) bool {
		return slices.Contains(KnownHeaderPresets, strings.ToLower(fl.Field().String()))
	})

	_ = validate.RegisterValidation("statusname", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseStatus(fl.Field().String())
		return ok
	})

	_ = validate.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		_, err := ParseCronSchedule(fl.Field().String())
		return err == nil
	})

	return validate
}

// ValidateConfig performs validation on the GlobalConfig structure. Every
// problem is reported at once inside a ConfigurationError.
func ValidateConfig(cfg *GlobalConfig) error {
	problems := validationProblems(newValidator().Struct(cfg), "GlobalConfig.")

	if cfg.NotificationConfig.Transport == TransportBot && cfg.NotificationConfig.BotToken == "" {
		problems = append(problems, fmt.Sprintf("notification_config.bot_token: required for the bot transport (or set %s)", EnvBotToken))
	}

	if len(problems) > 0 {
		return errorwrapper.NewConfigurationError(cfg.SourcePath, problems, nil)
	}
	return nil
}

// validationProblems turns validator output into readable lines.
func validationProblems(err error, trimPrefix string) []string {
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		fieldName := strings.TrimPrefix(e.Namespace(), trimPrefix)
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return messages
}
