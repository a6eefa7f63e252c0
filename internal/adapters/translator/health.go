package translator

import (
	"log/slog"
	"net"
	"net/url"
	"time"
)

const dialTimeout = 3 * time.Second

// checkEndpoint только логирует: недоступный при старте endpoint не мешает запуску
func checkEndpoint(logger *slog.Logger, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		logger.Warn("Translate endpoint URL is not valid", "url", rawURL, "error", err)
		return false
	}

	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	addr := net.JoinHostPort(u.Hostname(), port)

	logger.Info("Checking translate endpoint connectivity...", "addr", addr)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		logger.Warn("Translate endpoint seems unreachable", "addr", addr, "error", err)
		return false
	}
	_ = conn.Close()

	logger.Info("Translate endpoint reachable", "addr", addr)
	return true
}
