package hydro

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hydrostack/hydro-go/internal/config"
	"github.com/hydrostack/hydro-go/pkg/bind"
)

// DefaultPendingDelay is how long a sourced request runs before its
// element gets the hydro-request class.
const DefaultPendingDelay = 100 * time.Millisecond

// DefaultTracerName is the tracer used when Config.TracerName is empty.
const DefaultTracerName = "hydro"

// Antiforgery is the anti-forgery header pair.
type Antiforgery = config.Antiforgery

// Config configures a Client.
type Config struct {
	// BaseURL resolves relative URLs before the first page is loaded.
	BaseURL string

	// HTTPClient sends all requests. If nil, a client with a cookie jar
	// is created so antiforgery cookies round-trip.
	HTTPClient *http.Client

	// Logger is the structured logger for the client.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// BindDebounce is the bind debounce window.
	// Default: 10ms.
	BindDebounce time.Duration

	// PendingDelay is the grace delay before the hydro-request class is
	// added to a disabled element.
	// Default: 100ms.
	PendingDelay time.Duration

	// RequestTimeout bounds every HTTP request. Zero means no timeout.
	RequestTimeout time.Duration

	// UserAgent is sent with every request when set.
	UserAgent string

	// Antiforgery overrides the pair read from the page's hydro-config
	// meta tag.
	Antiforgery *Antiforgery

	// Metrics configures the Prometheus collectors.
	Metrics MetricsConfig

	// TracerName is the OpenTelemetry tracer name.
	// Default: "hydro".
	TracerName string
}

// MetricsConfig configures client metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "hydro").
	Namespace string

	// Subsystem is the metrics subsystem (default: "client").
	Subsystem string

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is where collectors are registered. If nil, collectors
	// are created but not registered.
	Registry prometheus.Registerer
}

// FromFile maps a loaded configuration file onto a Config.
func FromFile(f *config.Config) Config {
	return Config{
		BaseURL:        f.BaseURL,
		BindDebounce:   f.BindDebounceDuration(),
		PendingDelay:   f.PendingDelayDuration(),
		RequestTimeout: f.RequestTimeoutDuration(),
		UserAgent:      f.UserAgent,
		Metrics: MetricsConfig{
			Namespace: f.Metrics.Namespace,
		},
	}
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.BindDebounce <= 0 {
		c.BindDebounce = bind.DefaultDelay
	}
	if c.PendingDelay <= 0 {
		c.PendingDelay = DefaultPendingDelay
	}
	if c.TracerName == "" {
		c.TracerName = DefaultTracerName
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = config.DefaultNamespace
	}
	if c.Metrics.Subsystem == "" {
		c.Metrics.Subsystem = "client"
	}
	if len(c.Metrics.Buckets) == 0 {
		c.Metrics.Buckets = prometheus.DefBuckets
	}
	return c
}
