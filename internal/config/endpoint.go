// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// =============================================================================
// ENDPOINT
// =============================================================================

// Endpoint is the process-wide backend base URL. Every request reads it at
// call time, so SetBaseURL takes effect on the next call.
type Endpoint struct {
	mu  sync.RWMutex
	url string
}

// NewEndpoint creates an endpoint from raw, which must be a valid base URL.
func NewEndpoint(raw string) (*Endpoint, error) {
	e := &Endpoint{}
	if err := e.SetBaseURL(raw); err != nil {
		return nil, err
	}
	return e, nil
}

// BaseURL returns the current base URL without a trailing slash.
func (e *Endpoint) BaseURL() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.url
}

// SetBaseURL replaces the base URL. An invalid value leaves it unchanged.
func (e *Endpoint) SetBaseURL(raw string) error {
	u, err := NormalizeBaseURL(raw)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.url = u
	e.mu.Unlock()
	return nil
}

// NormalizeBaseURL checks that raw is an absolute http(s) URL and trims
// surrounding whitespace and trailing slashes.
func NormalizeBaseURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.New("base URL is empty")
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL '%s': scheme must be http or https", s)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL '%s': missing host", s)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("invalid URL '%s': query and fragment are not allowed", s)
	}
	return strings.TrimRight(s, "/"), nil
}
