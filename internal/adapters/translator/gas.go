package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/larriantoniy/crosspost_translator/internal/config"
	"github.com/larriantoniy/crosspost_translator/internal/domain"
	"github.com/larriantoniy/crosspost_translator/internal/metrics"
)

// Client переводит текст через HTTP endpoint (Google Apps Script web app).
type Client struct {
	client  *http.Client
	logger  *slog.Logger
	url     string
	from    string
	to      string
	limiter *rate.Limiter // nil — без ограничений
}

func NewClient(cfg *config.TranslateConfig, logger *slog.Logger) *Client {
	c := &Client{
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		url:    cfg.GasURL,
		from:   cfg.FromLanguage,
		to:     cfg.ToLanguage,
	}
	if c.from == "" {
		c.from = domain.AutoDetect
	}
	if cfg.RequestsPerSecond > 0 {
		burst := max(1, int(cfg.RequestsPerSecond))
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	checkEndpoint(logger, c.url)

	return c
}

// В режиме html endpoint теряет переводы строк, поэтому они передаются как <br>,
// а в ответе дополнительно раскрываются HTML-сущности.
var (
	newlineEncoder  = strings.NewReplacer("\n", "<br>")
	responseDecoder = strings.NewReplacer(
		"<br>", "\n",
		"<br/>", "\n",
		"<br />", "\n",
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", `"`,
		"&#x27;", "'",
		"&#x60;", "`",
	)
)

func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	if from == "" {
		from = c.from
	}
	if to == "" {
		to = c.to
	}

	bodyBytes, err := json.Marshal(domain.TranslateRequest{
		Before: from,
		After:  to,
		Text:   newlineEncoder.Replace(text),
		Mode:   domain.ModeHTML,
	})
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveTranslate("error", started)
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ObserveTranslate("rejected", started)
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("Translate endpoint returned error",
			"status", resp.StatusCode,
			"body", string(data),
		)
		return "", fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrTranslationRejected)
	}

	var tr domain.TranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		metrics.ObserveTranslate("error", started)
		return "", fmt.Errorf("decode response: %w", err)
	}

	if tr.Response.Status != nil && !*tr.Response.Status {
		metrics.ObserveTranslate("rejected", started)
		c.logger.Warn("Translate endpoint reported failure", "result", tr.Response.Result)
		return "", fmt.Errorf("%s: %w", tr.Response.Result, domain.ErrTranslationRejected)
	}

	metrics.ObserveTranslate("ok", started)
	c.logger.Debug("After translation", "from", from, "to", to, "result", tr.Response.Result)

	return responseDecoder.Replace(tr.Response.Result), nil
}
