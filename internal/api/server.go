package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/edgeads/internal/edge"
	"github.com/patrickwarner/edgeads/internal/flagctx"
	"github.com/patrickwarner/edgeads/internal/flags"
	"github.com/patrickwarner/edgeads/internal/middleware"
	"github.com/patrickwarner/edgeads/internal/observability"
	"github.com/patrickwarner/edgeads/internal/render"
)

// Marker header set on every outgoing response by the egress hook.
const (
	MarkerHeader = "X-EdgeWorker-LaunchDarkly"
	MarkerValue  = "enabled"
)

// errNoEvaluator is returned when the server was built without an evaluator.
var errNoEvaluator = errors.New("flag evaluator unavailable")

var tracer = otel.Tracer("edgeads")

// Server groups dependencies for the edge hooks and HTTP handlers.
type Server struct {
	Logger    *zap.Logger
	Evaluator flags.Evaluator
	Metrics   observability.MetricsRegistry
	// FlagClient and Store are optional and only consulted by HealthHandler.
	FlagClient interface{ Initialized() bool }
	Store      interface{ IsStoreAvailable() bool }
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, evaluator flags.Evaluator, metrics observability.MetricsRegistry) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Server{
		Logger:    logger,
		Evaluator: evaluator,
		Metrics:   metrics,
	}
}

// OnClientRequest is the ingress hook. It evaluates the enable-ads flag for
// the request and answers with the demo page, or with the fixed error page
// and a 500 if anything fails.
func (s *Server) OnClientRequest(ctx context.Context, req edge.IngressRequest) {
	start := time.Now()
	const endpoint = "ingress"
	method := req.Method()

	logger := middleware.LoggerFromContext(ctx, s.Logger)
	logger.Info("processing request", zap.String("path", req.Path()))

	showAds, err := s.evaluateAds(ctx, req)
	if err != nil {
		logger.Error("edge worker error", zap.String("error", err.Error()), zap.String("path", req.Path()))
		req.RespondWith(http.StatusInternalServerError, map[string]string{"Content-Type": "text/html"}, render.ErrorPage)
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		return
	}

	logger.Info("feature flag evaluated", zap.String("flag", flags.EnableAds), zap.Bool("value", showAds))

	req.RespondWith(http.StatusOK, map[string]string{"Content-Type": "text/html"}, render.Page(showAds))
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

// evaluateAds builds the context and asks the evaluator for enable-ads.
// A panic in either step is turned into an error.
func (s *Server) evaluateAds(ctx context.Context, req edge.Request) (showAds bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	rec := flagctx.Build(req)

	if s.Evaluator == nil {
		return false, errNoEvaluator
	}

	ctx, span := tracer.Start(ctx, "EvaluateFlag",
		trace.WithAttributes(
			attribute.String("flag.key", flags.EnableAds),
			attribute.Bool("user.anonymous", rec.User.Anonymous),
			attribute.String("location.country", rec.Location.Country),
			attribute.Bool("device.mobile", rec.Device.Custom.IsMobile),
		))
	defer span.End()

	start := time.Now()
	showAds, err = s.Evaluator.BoolVariation(ctx, flags.EnableAds, rec, false)
	s.Metrics.RecordFlagEvaluationLatency(flags.EnableAds, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "flag evaluation failed")
		s.Metrics.IncrementFlagEvaluations(flags.EnableAds, "error")
		return false, err
	}

	span.SetAttributes(attribute.Bool("flag.value", showAds))
	s.Metrics.IncrementFlagEvaluations(flags.EnableAds, strconv.FormatBool(showAds))
	return showAds, nil
}

// OnClientResponse is the egress hook. It marks every outgoing response.
func (s *Server) OnClientResponse(ctx context.Context, req edge.Request, resp edge.EgressResponse) {
	middleware.LoggerFromContext(ctx, s.Logger).Info("adding response header", zap.String("path", req.Path()))
	resp.SetHeader(MarkerHeader, MarkerValue)
	s.Metrics.IncrementEgressAnnotations()
}
