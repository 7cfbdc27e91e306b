package flags

import (
	"context"
	"fmt"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldreason"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/launchdarkly/go-server-sdk/v7/ldcomponents"
	"go.uber.org/zap"

	"github.com/patrickwarner/edgeads/internal/db"
	"github.com/patrickwarner/edgeads/internal/flagctx"
)

// ClientOptions configures the LaunchDarkly client.
type ClientOptions struct {
	SDKKey      string
	Offline     bool
	InitTimeout time.Duration
	// FeatureStore switches the client to daemon mode: flags are read from
	// the store and never fetched from LaunchDarkly directly.
	FeatureStore  *db.FeatureStore
	StoreCacheTTL time.Duration
	Logger        *zap.Logger
}

// NewLDClient builds a LaunchDarkly client. A client that failed to
// initialize within InitTimeout is still returned; it keeps retrying in the
// background and serves defaults until then.
func NewLDClient(opts ClientOptions) (*ld.LDClient, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	loggers := ldlog.NewDefaultLoggers()
	loggers.SetBaseLogger(zap.NewStdLog(logger.Named("launchdarkly")))

	config := ld.Config{
		Offline: opts.Offline,
		Logging: ldcomponents.Logging().Loggers(loggers),
	}
	if opts.FeatureStore != nil {
		config.DataStore = ldcomponents.PersistentDataStore(opts.FeatureStore.Configurer()).CacheTime(opts.StoreCacheTTL)
		config.DataSource = ldcomponents.ExternalUpdatesOnly()
	}

	client, err := ld.MakeCustomClient(opts.SDKKey, config, opts.InitTimeout)
	if client == nil {
		return nil, fmt.Errorf("create launchdarkly client: %w", err)
	}
	if err != nil {
		logger.Warn("launchdarkly client not yet initialized", zap.Error(err))
	}
	return client, nil
}

// ldClient is the part of *ld.LDClient the evaluator uses.
type ldClient interface {
	BoolVariationDetail(key string, context ldcontext.Context, defaultVal bool) (bool, ldreason.EvaluationDetail, error)
}

// LDEvaluator evaluates flags with the LaunchDarkly server SDK.
type LDEvaluator struct {
	client ldClient
	logger *zap.Logger
}

// NewLDEvaluator wraps client, which is usually an *ld.LDClient.
func NewLDEvaluator(client ldClient, logger *zap.Logger) *LDEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LDEvaluator{client: client, logger: logger}
}

// BoolVariation evaluates flagKey for rec. Evaluation problems that the SDK
// answers with defaultValue (unknown flag, wrong type, malformed flag) are
// logged and the default is returned. Only a client that is not ready or an
// internal SDK failure is reported as an error.
func (e *LDEvaluator) BoolVariation(ctx context.Context, flagKey string, rec flagctx.Record, defaultValue bool) (bool, error) {
	ldctx := ToLDContext(rec)
	if err := ldctx.Err(); err != nil {
		return defaultValue, fmt.Errorf("%w: %v", ErrInvalidContext, err)
	}

	value, detail, err := e.client.BoolVariationDetail(flagKey, ldctx, defaultValue)
	if err == nil {
		return value, nil
	}

	errorKind := detail.Reason.GetErrorKind()
	switch errorKind {
	case ldreason.EvalErrorClientNotReady, ldreason.EvalErrorException:
		return defaultValue, fmt.Errorf("%w: %s (%s): %v", ErrEvaluation, flagKey, errorKind, err)
	}

	e.logger.Warn("flag evaluated to default",
		zap.String("flag", flagKey),
		zap.String("error_kind", string(errorKind)),
		zap.Error(err))
	return value, nil
}

// ToLDContext converts the record into a LaunchDarkly multi-kind context.
func ToLDContext(rec flagctx.Record) ldcontext.Context {
	user := ldcontext.NewBuilder(rec.User.Key).
		Anonymous(rec.User.Anonymous).
		Build()

	location := ldcontext.NewBuilder(rec.Location.Key).
		Kind(flagctx.KindLocation).
		SetString("country", rec.Location.Country).
		Build()

	custom := ldvalue.ObjectBuild().
		Set("isMobile", ldvalue.Bool(rec.Device.Custom.IsMobile)).
		Build()
	device := ldcontext.NewBuilder(rec.Device.Key).
		Kind(flagctx.KindDevice).
		SetValue("custom", custom).
		SetString("type", rec.Device.Type).
		SetString("os", rec.Device.OS).
		SetString("browser", rec.Device.Browser).
		SetBool("bot", rec.Device.Bot).
		Build()

	return ldcontext.NewMulti(user, location, device)
}
