package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// Validate checks structural constraints on a loaded configuration. Field
// names in error messages use the yaml spelling so they point back at the
// file the operator edited.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q constraint", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}

	if cfg.Telegram.Proxy.Enabled {
		if cfg.Telegram.Proxy.Host == "" {
			return errors.New("config: telegram.proxy.host is required when the proxy is enabled")
		}
		if cfg.Telegram.Proxy.Port < 1 || cfg.Telegram.Proxy.Port > 65535 {
			return fmt.Errorf("config: telegram.proxy.port must be 1-65535, got %d", cfg.Telegram.Proxy.Port)
		}
	}

	if cfg.Monitoring.BotToken != "" && cfg.Monitoring.GroupID == 0 {
		return errors.New("config: monitoring.group_id is required when monitoring.bot_token is set")
	}

	if cfg.Heartbeat.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(cfg.Heartbeat.Schedule); err != nil {
			return fmt.Errorf("config: heartbeat.schedule: %w", err)
		}
	}

	return nil
}
