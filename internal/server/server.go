// Package server exposes the simulation engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/config"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/internal/output"
	"github.com/rpgo/retirement-simulator/internal/storage"
)

// Options tune request handling.
type Options struct {
	// RatePerSecond and Burst bound /simulate requests; RatePerSecond <= 0 disables the limit.
	RatePerSecond float64
	Burst         int
	// Timeout bounds one simulation request.
	Timeout time.Duration
	Logger  calculation.Logger
}

// DefaultOptions allows two simulations per second with a burst of four.
func DefaultOptions() Options {
	return Options{RatePerSecond: 2, Burst: 4, Timeout: 60 * time.Second}
}

// Server handles simulation requests. Store is optional.
type Server struct {
	engine  *calculation.SimulationEngine
	parser  *config.InputParser
	store   *storage.RunStore
	limiter *rate.Limiter
	timeout time.Duration
	logger  calculation.Logger
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// New creates a server over an engine. store may be nil.
func New(engine *calculation.SimulationEngine, parser *config.InputParser, store *storage.RunStore, opts Options) *Server {
	s := &Server{
		engine:  engine,
		parser:  parser,
		store:   store,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
	if s.logger == nil {
		s.logger = calculation.NopLogger{}
	}
	if s.timeout <= 0 {
		s.timeout = DefaultOptions().Timeout
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return s
}

// ListenAndServe serves HTTP on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &fasthttp.Server{
		Handler:            s.Handle,
		Name:               "retiresim",
		MaxRequestBodySize: 1 << 20,
	}
	s.logger.Infof("listening on %s", addr)
	return srv.ListenAndServe(addr)
}

// Handle routes one request.
func (s *Server) Handle(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/healthz":
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
	case "/simulate":
		if !ctx.IsPost() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "use POST")
			return
		}
		s.handleSimulate(ctx)
	case "/runs":
		if !ctx.IsGet() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "use GET")
			return
		}
		s.handleRuns(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

func (s *Server) handleSimulate(ctx *fasthttp.RequestCtx) {
	if s.limiter != nil && !s.limiter.Allow() {
		writeError(ctx, fasthttp.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var modes []domain.Mode
	for _, raw := range ctx.QueryArgs().PeekMulti("mode") {
		mode, err := calculation.ParseMode(string(raw))
		if err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, err.Error())
			return
		}
		modes = append(modes, mode)
	}
	format := string(ctx.QueryArgs().Peek("format"))
	if format != "" && output.GetFormatterByName(format) == nil {
		writeError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("%s: %q", output.ErrUnsupportedFormat, format))
		return
	}

	profile, err := s.parser.Parse(ctx.PostBody())
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	runCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	report, err := s.engine.Run(runCtx, profile, modes...)
	if err != nil {
		status := fasthttp.StatusInternalServerError
		switch {
		case errors.Is(err, calculation.ErrConfigInvalid):
			status = fasthttp.StatusBadRequest
		case errors.Is(err, context.DeadlineExceeded):
			status = fasthttp.StatusServiceUnavailable
		}
		s.logger.Warnf("simulate failed: %v", err)
		writeError(ctx, status, err.Error())
		return
	}
	s.logger.Infof("run %s for %q completed", report.RunID, report.ProfileName)

	if s.store != nil {
		if err := s.store.SaveReport(runCtx, report); err != nil {
			s.logger.Errorf("save run %s: %v", report.RunID, err)
		}
	}

	if format == "" || output.NormalizeFormatName(format) == "json" {
		writeJSON(ctx, fasthttp.StatusOK, report)
		return
	}
	data, err := output.GetFormatterByName(format).Format(report)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	ctx.SetContentType(contentType(format))
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(data)
}

func (s *Server) handleRuns(ctx *fasthttp.RequestCtx) {
	if s.store == nil {
		writeError(ctx, fasthttp.StatusNotFound, "run history is disabled")
		return
	}
	limit := ctx.QueryArgs().GetUintOrZero("limit")
	runs, err := s.store.ListRuns(context.Background(), limit)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []storage.RunSummary{}
	}
	writeJSON(ctx, fasthttp.StatusOK, runs)
}

func contentType(format string) string {
	switch output.NormalizeFormatName(format) {
	case "csv", "csv-summary":
		return "text/csv; charset=utf-8"
	case "yaml":
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(data)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, ErrorResponse{Status: status, Message: message})
}
