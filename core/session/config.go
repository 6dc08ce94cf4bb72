package session

import (
	"log/slog"
	"time"
)

// Config holds Manager timing settings.
type Config struct {
	RestoreTimeout time.Duration `env:"SESSIONKIT_RESTORE_TIMEOUT" envDefault:"10s"`
	LogoutTimeout  time.Duration `env:"SESSIONKIT_LOGOUT_TIMEOUT" envDefault:"5s"`
	RefreshTimeout time.Duration `env:"SESSIONKIT_REFRESH_TIMEOUT" envDefault:"15s"`
	EventBuffer    int           `env:"SESSIONKIT_EVENT_BUFFER" envDefault:"16"`
}

func defaultConfig() Config {
	return Config{
		RestoreTimeout: 10 * time.Second,
		LogoutTimeout:  5 * time.Second,
		RefreshTimeout: 15 * time.Second,
		EventBuffer:    16,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig replaces the timing settings. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		if cfg.RestoreTimeout > 0 {
			m.cfg.RestoreTimeout = cfg.RestoreTimeout
		}
		if cfg.LogoutTimeout > 0 {
			m.cfg.LogoutTimeout = cfg.LogoutTimeout
		}
		if cfg.RefreshTimeout > 0 {
			m.cfg.RefreshTimeout = cfg.RefreshTimeout
		}
		if cfg.EventBuffer > 0 {
			m.cfg.EventBuffer = cfg.EventBuffer
		}
	}
}

// WithRestoreTimeout bounds Restore.
func WithRestoreTimeout(d time.Duration) Option {
	return WithConfig(Config{RestoreTimeout: d})
}

// WithLogoutTimeout bounds the remote logout call.
func WithLogoutTimeout(d time.Duration) Option {
	return WithConfig(Config{LogoutTimeout: d})
}

// WithRefreshTimeout bounds one refresh cycle.
func WithRefreshTimeout(d time.Duration) Option {
	return WithConfig(Config{RefreshTimeout: d})
}

// WithLogger sets the manager logger. A nil logger is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMetrics records refresh outcomes and state transitions.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}
