// Package config resolves the browser-test environment.
package config

import (
	"os"
	"time"
)

// TestConfig holds all configuration for E2E tests
type TestConfig struct {
	BaseURL     string
	Timeout     time.Duration
	Headless    bool
	SlowMo      int
	Screenshots bool
}

// GetConfig returns the test configuration from environment variables
func GetConfig() *TestConfig {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	slowMo := 0
	if os.Getenv("SLOW_MO") != "" {
		slowMo = 100
	}

	return &TestConfig{
		BaseURL:     baseURL,
		Timeout:     30 * time.Second,
		Headless:    os.Getenv("HEADLESS") != "false",
		SlowMo:      slowMo,
		Screenshots: os.Getenv("SCREENSHOTS") == "true",
	}
}
