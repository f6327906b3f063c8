// Package config provides configuration types and loading for crewdeck.
package config

import "time"

// Config is the root configuration struct.
// Top-level groups: API, Chat, Mock.
type Config struct {
	API  APIConfig  `json:"api"`
	Chat ChatConfig `json:"chat"`
	Mock MockConfig `json:"mock"`
}

// APIConfig points the client at the crew API.
type APIConfig struct {
	BaseURL        string `json:"baseUrl" envconfig:"BASE_URL"`
	Token          string `json:"token" envconfig:"TOKEN"`
	TimeoutSeconds int    `json:"timeoutSeconds" envconfig:"TIMEOUT_SECONDS"`
}

// Timeout returns the per-request timeout.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ChatConfig tunes the task chat engine.
type ChatConfig struct {
	PollIntervalMs int  `json:"pollIntervalMs" envconfig:"POLL_INTERVAL_MS"`
	DisableRetry   bool `json:"disableRetry" envconfig:"DISABLE_RETRY"`
}

// PollInterval returns the polling cadence.
func (c ChatConfig) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// MockConfig tunes the local mock API server.
type MockConfig struct {
	Listen       string `json:"listen" envconfig:"LISTEN"`
	ReplyDelayMs int    `json:"replyDelayMs" envconfig:"REPLY_DELAY_MS"`
}

// ReplyDelay returns how long the mock server waits before emitting its
// canned assistant reply.
func (c MockConfig) ReplyDelay() time.Duration {
	if c.ReplyDelayMs < 0 {
		return 0
	}
	return time.Duration(c.ReplyDelayMs) * time.Millisecond
}

// DefaultConfig returns the defaults applied before file and env overrides.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://127.0.0.1:8787",
			TimeoutSeconds: 30,
		},
		Chat: ChatConfig{
			PollIntervalMs: 2000,
		},
		Mock: MockConfig{
			Listen:       "127.0.0.1:8787",
			ReplyDelayMs: 750,
		},
	}
}
