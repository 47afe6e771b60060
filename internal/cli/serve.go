package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/errors"
	"github.com/matzehuels/cratediff/pkg/observability"
	"github.com/matzehuels/cratediff/pkg/pipeline"
	"github.com/matzehuels/cratediff/pkg/render"
)

const shutdownTimeout = 10 * time.Second

func (c *CLI) serveCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve crate diffs over HTTP",
		Long: `Serve crate diffs for the configured workspace over HTTP.

  GET /diff?crate=serde@1.0.0-1.0.1&nested=true&format=json
  GET /healthz
  GET /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			store, err := openCache(ctx, cfg, g.noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			observability.NewMetrics(reg).Install()
			defer observability.Reset()

			s := &server{
				runner:        c.newRunner(cfg, store),
				manifest:      cfg.ManifestPath,
				timeout:       cfg.Serve.Timeout,
				lookupTimeout: cfg.LookupTimeout,
				logger:        c.Logger,
			}
			return s.listen(ctx, cfg.Serve.Addr, s.routes(reg))
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}

// server answers diff requests for one workspace.
type server struct {
	runner        *pipeline.Runner
	manifest      string
	timeout       time.Duration
	lookupTimeout time.Duration
	logger        *log.Logger
}

func (s *server) routes(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/diff", s.handleDiff)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// listen serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *server) listen(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "manifest", s.manifest)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *server) handleDiff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))

	format := q.Get("format")
	if format == "" {
		format = render.FormatJSON
	}
	if err := render.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	reqs, err := crate.ParseRequests(q["crate"])
	if err != nil {
		writeError(w, err)
		return
	}
	var flags [3]bool
	for i, name := range []string{"nested", "links", "group"} {
		if flags[i], err = queryBool(q.Get(name)); err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidRequest, "invalid %s parameter %q", name, q.Get(name)))
			return
		}
	}
	nested, links, group := flags[0], flags[1], flags[2]

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.runner.Execute(ctx, pipeline.Options{
		Requests:        reqs,
		ManifestPath:    s.manifest,
		Nested:          nested,
		ComparisonLinks: links,
		LookupTimeout:   s.lookupTimeout,
		Logger:          logger,
	})
	if err != nil {
		logger.Warn("diff failed", "err", err)
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := pipeline.Render(ctx, &buf, res.Report, format, render.Options{Flat: !group, ComparisonLinks: links}); err != nil {
		writeError(w, err)
		return
	}
	logger.Debug("served diff", "mode", res.Mode, "crates", len(reqs), "format", format)

	w.Header().Set("Content-Type", pipeline.ContentType(format))
	_, _ = w.Write(buf.Bytes())
}

func queryBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

type errorBody struct {
	Code  errors.Code `json:"code,omitempty"`
	Error string      `json:"error"`
}

// statusFor maps pipeline failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errors.ErrCodeInvalidRequest),
		errors.Is(err, errors.ErrCodeInvalidFormat),
		errors.Is(err, errors.ErrCodeInvalidPackage):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeMetadata):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	_ = json.NewEncoder(w).Encode(errorBody{Code: errors.GetCode(err), Error: errors.UserMessage(err)})
}
