package checkout

import (
	"net/http"
	"time"

	"github.com/vitwit/checkout/logger"
	"github.com/vitwit/checkout/metrics"
)

type Option func(*Checkout)

func WithLogger(l logger.Logger) Option {
	return func(c *Checkout) {
		c.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(c *Checkout) {
		c.metrics = r
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Checkout) {
		c.httpClient = client
	}
}

func WithTimeout(t time.Duration) Option {
	return func(c *Checkout) {
		c.timeout = t
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Checkout) {
		c.pollInterval = d
	}
}

func WithMaxPollAttempts(n int) Option {
	return func(c *Checkout) {
		c.maxPollAttempts = n
	}
}
