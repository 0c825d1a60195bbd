package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"cashflow/internal/config"
)

// BackendType names a record store implementation.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid reports whether bt names a supported store.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// ParseBackendType accepts DATA_BACKEND values regardless of case and
// surrounding space.
func ParseBackendType(s string) (BackendType, error) {
	bt := BackendType(strings.ToLower(strings.TrimSpace(s)))
	if !bt.IsValid() {
		return "", fmt.Errorf("invalid backend type %q: must be %s or %s", s, MemoryBackend, SQLiteBackend)
	}
	return bt, nil
}

// FromAppConfig picks the backend settings out of the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType, err := ParseBackendType(appConfig.DataBackend)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if !c.Type.IsValid() {
		errs = append(errs, fmt.Errorf("invalid backend type: %s", c.Type))
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		errs = append(errs, errors.New("SQLite database path is required for sqlite backend"))
	}
	if c.AMQPURL != "" {
		if c.AMQPExchange == "" {
			errs = append(errs, errors.New("AMQP exchange is required when AMQP URL is set"))
		}
		if c.AMQPQueue == "" {
			errs = append(errs, errors.New("AMQP queue is required when AMQP URL is set"))
		}
	}
	return errors.Join(errs...)
}

// LogValue renders the config for startup logs with broker credentials
// masked.
func (c Config) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("type", c.Type.String())}
	if c.Type == SQLiteBackend {
		attrs = append(attrs, slog.String("db_path", c.SQLiteDBPath))
	}
	if c.AMQPURL != "" {
		attrs = append(attrs,
			slog.String("amqp_url", redactURL(c.AMQPURL)),
			slog.String("amqp_exchange", c.AMQPExchange),
			slog.String("amqp_queue", c.AMQPQueue))
	}
	return slog.GroupValue(attrs...)
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
