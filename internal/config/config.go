package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string

	APIBaseURL       string
	APITimeoutSec    int
	AuthCheckTimeout time.Duration

	SessionCookieName  string
	CSRFCookieName     string
	SessionIdleMinutes int
	SessionEncryptKey  string
	CookieSecure       bool
	TrustProxy         bool
	CORSAllowedOrigins []string

	NotificationTTL time.Duration
	HomeMaxItems    int

	HTTPReadTimeoutSec       int
	HTTPReadHeaderTimeoutSec int
	HTTPWriteTimeoutSec      int
	HTTPIdleTimeoutSec       int
}

func Load() (Config, error) {
	cfg := Config{
		ListenAddr:               env("LISTEN_ADDR", ":8080"),
		APIBaseURL:               env("FINDIT_API_BASE_URL", "http://127.0.0.1:5000"),
		APITimeoutSec:            envInt("FINDIT_API_TIMEOUT_SEC", 15),
		AuthCheckTimeout:         time.Duration(envInt("AUTH_CHECK_TIMEOUT_MS", 5000)) * time.Millisecond,
		SessionCookieName:        env("SESSION_COOKIE_NAME", "findit_session"),
		CSRFCookieName:           env("CSRF_COOKIE_NAME", "findit_csrf"),
		SessionIdleMinutes:       envInt("SESSION_IDLE_MINUTES", 120),
		SessionEncryptKey:        env("SESSION_ENCRYPT_KEY", "CHANGE_ME_PRODUCTION_SESSION_KEY"),
		CookieSecure:             envBool("COOKIE_SECURE", false),
		TrustProxy:               envBool("TRUST_PROXY", false),
		CORSAllowedOrigins:       envCSV("CORS_ALLOWED_ORIGINS"),
		NotificationTTL:          time.Duration(envInt("NOTIFICATION_TTL_MS", 5000)) * time.Millisecond,
		HomeMaxItems:             envInt("HOME_MAX_ITEMS", 6),
		HTTPReadTimeoutSec:       envInt("HTTP_READ_TIMEOUT_SEC", 10),
		HTTPReadHeaderTimeoutSec: envInt("HTTP_READ_HEADER_TIMEOUT_SEC", 5),
		HTTPWriteTimeoutSec:      envInt("HTTP_WRITE_TIMEOUT_SEC", 30),
		HTTPIdleTimeoutSec:       envInt("HTTP_IDLE_TIMEOUT_SEC", 60),
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("FINDIT_API_BASE_URL must be an absolute http(s) URL")
	}
	if cfg.APITimeoutSec <= 0 {
		return Config{}, fmt.Errorf("FINDIT_API_TIMEOUT_SEC must be positive")
	}
	if cfg.AuthCheckTimeout <= 0 {
		return Config{}, fmt.Errorf("AUTH_CHECK_TIMEOUT_MS must be positive")
	}
	if cfg.SessionIdleMinutes <= 0 {
		return Config{}, fmt.Errorf("SESSION_IDLE_MINUTES must be positive")
	}
	if cfg.NotificationTTL <= 0 {
		return Config{}, fmt.Errorf("NOTIFICATION_TTL_MS must be positive")
	}
	if cfg.HomeMaxItems <= 0 {
		return Config{}, fmt.Errorf("HOME_MAX_ITEMS must be positive")
	}
	if strings.TrimSpace(cfg.SessionEncryptKey) == "" ||
		cfg.SessionEncryptKey == "CHANGE_ME_PRODUCTION_SESSION_KEY" ||
		len(cfg.SessionEncryptKey) < 24 {
		return Config{}, fmt.Errorf("SESSION_ENCRYPT_KEY must be set to a strong non-default value (>=24 chars)")
	}
	if !cfg.CookieSecure && !isLocalListen(cfg.ListenAddr) {
		return Config{}, fmt.Errorf("COOKIE_SECURE=false is allowed only for local listen addresses")
	}
	return cfg, nil
}

func (c Config) SessionIdleDuration() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

func (c Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSec) * time.Second
}

func env(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func envCSV(k string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isLocalListen(addr string) bool {
	a := strings.ToLower(strings.TrimSpace(addr))
	return strings.Contains(a, "127.0.0.1") || strings.Contains(a, "localhost") || strings.Contains(a, "[::1]") || strings.HasPrefix(a, ":")
}
