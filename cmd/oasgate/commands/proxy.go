package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/erraggy/oasgate"
	"github.com/erraggy/oasgate/middleware"
)

func newProxyCmd(opts *globalOptions) *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "proxy [flags]",
		Short: "Run a contract-enforcing reverse proxy",
		Long: `Run a reverse proxy that validates traffic against an OpenAPI 2.0 contract.

Requests that violate the contract are answered with a JSON:API error
document and never reach the upstream. With --validate-responses, upstream
responses are buffered and replaced by a 500 error document when they
violate the contract. Prometheus metrics are served on --metrics-path.

Configuration:
  Config is loaded from --config, or oasgate.yaml in the current directory
  or $HOME/.oasgate/. Environment variables override config values with the
  OASGATE_ prefix (e.g. OASGATE_UPSTREAM), and flags override both.`,
		Example: `  oasgate proxy --contract swagger.yaml --upstream http://localhost:9000
  oasgate proxy --config oasgate.yaml --validate-responses
  OASGATE_UPSTREAM=http://api:9000 oasgate proxy --contract swagger.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := newProxyViper(configFile)
			if err := bindProxyFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := loadProxyConfig(v)
			if err != nil {
				return err
			}
			return runProxy(cmd.Context(), cfg, opts.logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (default: ./oasgate.yaml)")
	f.String("listen", ":8080", "address to listen on")
	f.String("upstream", "", "URL of the service behind the proxy")
	f.String("contract", "", "path to the OpenAPI 2.0 contract")
	f.Bool("validate-responses", false, "validate upstream responses")
	f.Bool("strict", false, "reject contracts with authoring errors")
	f.Bool("redact-headers", false, "omit header values from violations")
	f.StringArray("exception", nil, "regexp of paths that pass without a matching route (repeatable)")
	f.String("metrics-path", "/metrics", "path serving Prometheus metrics; empty disables")
	f.Int64("max-body-bytes", middleware.DefaultMaxBodyBytes, "largest request body accepted")
	f.Duration("read-header-timeout", 10*time.Second, "time allowed to read request headers")
	f.Duration("shutdown-timeout", 15*time.Second, "time allowed for graceful shutdown")
	return cmd
}

// newProxyHandler builds the proxy: the metrics endpoint plus a reverse
// proxy to the upstream behind the contract middleware.
func newProxyHandler(cfg *ProxyConfig, logger *slog.Logger) (http.Handler, error) {
	v, err := loadValidator(cfg.Contract, nil, validatorOptions{
		strict:        cfg.StrictContract,
		redactHeaders: cfg.RedactHeaders,
		exceptions:    cfg.Exceptions,
	}, logger)
	if err != nil {
		return nil, err
	}

	upstream, err := url.Parse(cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream: %w", err)
	}
	rp := httputil.NewSingleHostReverseProxy(upstream)
	director := rp.Director
	rp.Director = func(r *http.Request) {
		director(r)
		if r.Header.Get("User-Agent") == "" {
			r.Header.Set("User-Agent", oasgate.UserAgent())
		}
		// Validated responses must use a content coding the middleware can decode.
		if cfg.ValidateResponses {
			if ae := r.Header.Get("Accept-Encoding"); ae != "" {
				r.Header.Set("Accept-Encoding", middleware.SupportedEncodings(ae))
			}
		}
	}
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusBadGateway)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mw, err := middleware.New(v,
		middleware.WithLogger(logger),
		middleware.WithResponseValidation(cfg.ValidateResponses),
		middleware.WithMetrics(middleware.NewMetrics(reg)),
		middleware.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if cfg.MetricsPath != "" {
		mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			Registry: reg,
		}))
	}
	mux.Handle("/", mw.Handler(rp))
	return mux, nil
}

// runProxy serves the proxy until ctx is cancelled, then shuts down gracefully.
func runProxy(ctx context.Context, cfg *ProxyConfig, logger *slog.Logger) error {
	handler, err := newProxyHandler(cfg, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting proxy", "listen", cfg.Listen, "upstream", cfg.Upstream, "contract", cfg.Contract)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down proxy")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
