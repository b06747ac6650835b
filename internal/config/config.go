// Package config provides centralized configuration management for the dashboard.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Dashboard DashboardConfig
	Chart     ChartConfig
	Launcher  LauncherConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8501)
	Port int `env:"SERVER_PORT" default:"8501"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DataConfig locates the indicator workbook.
type DataConfig struct {
	// File is the workbook name or path (default: telecom_data.xlsx)
	File string `env:"DATA_FILE" envAlt:"EXCEL_PATH" default:"telecom_data.xlsx"`

	// BaseDir is the directory relative file names resolve against.
	// Empty means: working directory first, then the executable's directory.
	BaseDir string `env:"DATA_BASE_DIR"`
}

// DashboardConfig holds presentation and selection settings.
type DashboardConfig struct {
	// Title is the page heading (default: Telecom Indicators Trends Explorer)
	Title string `env:"DASHBOARD_TITLE" default:"Telecom Indicators Trends Explorer"`

	// Mode is "multi" (1 to 5 areas) or "single" (exactly one area)
	Mode string `env:"DASHBOARD_MODE" default:"multi"`

	// PreviewRows is the number of raw rows shown in the data preview (default: 20)
	PreviewRows int `env:"DASHBOARD_PREVIEW_ROWS" default:"20"`
}

// ChartConfig holds chart rendering settings.
type ChartConfig struct {
	// Width of rendered charts in pixels (default: 1000)
	Width int `env:"CHART_WIDTH" default:"1000"`

	// Height of rendered charts in pixels (default: 500)
	Height int `env:"CHART_HEIGHT" default:"500"`

	// MaxConcurrent bounds parallel chart renders (default: 4)
	MaxConcurrent int `env:"CHART_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long a request waits for a render slot (default: 5s)
	MaxWait time.Duration `env:"CHART_MAX_WAIT" default:"5s"`
}

// LauncherConfig controls opening the dashboard in a browser on startup.
type LauncherConfig struct {
	// Enabled turns the browser launch on or off (default: true)
	Enabled bool `env:"LAUNCHER_ENABLED" default:"true"`

	// Delay before the browser is opened (default: 2s)
	Delay time.Duration `env:"LAUNCHER_DELAY" default:"2s"`

	// ManagedEnv lists environment variables that mark a managed hosting
	// environment. If any of them is set the launch is suppressed.
	ManagedEnv []string `env:"LAUNCHER_MANAGED_ENV" default:"DASHBOARD_MANAGED,STREAMLIT_SHARING_MODE,KUBERNETES_SERVICE_HOST"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// URL returns the address a local browser should open.
func (c *ServerConfig) URL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + host + ":" + itoa(c.Port)
}

// Path resolves the data file. Absolute paths are returned as is. Relative
// paths resolve against BaseDir when set; otherwise the working directory is
// tried first and the executable's directory second.
func (c *DataConfig) Path() string {
	if filepath.IsAbs(c.File) {
		return c.File
	}
	if c.BaseDir != "" {
		return filepath.Join(c.BaseDir, c.File)
	}
	if _, err := os.Stat(c.File); err == nil {
		return c.File
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), c.File)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return c.File
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
