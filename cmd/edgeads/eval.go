package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/patrickwarner/edgeads/internal/config"
	"github.com/patrickwarner/edgeads/internal/edge"
	"github.com/patrickwarner/edgeads/internal/flagctx"
	"github.com/patrickwarner/edgeads/internal/flags"
)

type evalOptions struct {
	userID    string
	userAgent string
	country   string
	offline   bool
}

var evalOpts evalOptions

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalOpts.userID, "user-id", "", "Value of the X-User-ID header")
	evalCmd.Flags().StringVar(&evalOpts.userAgent, "user-agent", "", "Value of the User-Agent header")
	evalCmd.Flags().StringVar(&evalOpts.country, "country", "", "Country the runtime would attach to the request")
	evalCmd.Flags().BoolVar(&evalOpts.offline, "offline", false, "Do not contact LaunchDarkly; every flag evaluates to its default and config errors are only reported")
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate enable-ads for a simulated request",
	Long:  "Builds the evaluation context for a simulated request, prints it as JSON and\nprints the enable-ads decision returned by LaunchDarkly.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			if !evalOpts.offline {
				return fmt.Errorf("load config: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "ignoring config error in offline mode: %v\n", err)
		}

		client, err := flags.NewLDClient(flags.ClientOptions{
			SDKKey:      cfg.LDSDKKey,
			Offline:     cfg.LDOffline || evalOpts.offline,
			InitTimeout: cfg.LDInitTimeout,
			Logger:      zap.NewNop(),
		})
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		evaluator := flags.NewLDEvaluator(client, zap.NewNop())
		return evaluate(cmd.Context(), cmd.OutOrStdout(), evaluator, evalOpts)
	},
}

// simulatedRequest builds the request the runtime would hand to the ingress hook.
func simulatedRequest(opts evalOptions) *edge.MockRequest {
	headers := map[string]string{}
	if opts.userID != "" {
		headers[flagctx.UserIDHeader] = opts.userID
	}
	if opts.userAgent != "" {
		headers["User-Agent"] = opts.userAgent
	}
	req := edge.NewMockRequest("/", headers)
	if opts.country != "" {
		req.Location = &edge.Location{Country: opts.country}
	}
	return req
}

func evaluate(ctx context.Context, out io.Writer, evaluator flags.Evaluator, opts evalOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rec := flagctx.Build(simulatedRequest(opts))
	fmt.Fprintf(out, "context: %s\n", flags.ToLDContext(rec).JSONString())

	showAds, err := evaluator.BoolVariation(ctx, flags.EnableAds, rec, false)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", flags.EnableAds, err)
	}
	fmt.Fprintf(out, "%s: %t\n", flags.EnableAds, showAds)
	return nil
}
