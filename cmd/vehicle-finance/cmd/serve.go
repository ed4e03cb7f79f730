package cmd

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/vehicle-finance/internal/config"
	"github.com/iwvelando/vehicle-finance/internal/logging"
	"github.com/iwvelando/vehicle-finance/internal/ratelimit"
	"github.com/iwvelando/vehicle-finance/internal/server"
	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var (
		serverConfigPath string
		address          string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculators over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.load()
			if err != nil {
				return err
			}
			defer rt.close()

			serverConfig, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				serverConfig.Address = address
			}

			// A logging section in the server config replaces the main one.
			logger := rt.logger
			if serverConfig.Logging != (config.LoggingConfig{}) {
				logger, err = logging.New(serverConfig.Logging, root.logLevel)
				if err != nil {
					return err
				}
				defer func() { _ = logger.Sync() }()
			}

			var limiter ratelimit.Limiter
			if serverConfig.RateLimit.Requests > 0 {
				if serverConfig.Redis.Address != "" {
					limiter = ratelimit.NewRedisLimiter(ratelimit.RedisOptions{
						Address:  serverConfig.Redis.Address,
						Password: serverConfig.Redis.Password,
						DB:       serverConfig.Redis.DB,
					}, serverConfig.RateLimit.Requests, serverConfig.RateLimitWindow())
				} else {
					limiter = ratelimit.NewMemoryLimiter(serverConfig.RateLimit.Requests, serverConfig.RateLimitWindow())
				}
				defer func() { _ = limiter.Close() }()
			}

			handler := server.NewHandler(logger, server.Options{
				Context:     rt.conf.MathContext(),
				Defaults:    &rt.defaults,
				MaxBodySize: serverConfig.BodySizeBytes(),
				Version:     root.version,
				Limiter:     limiter,
			})

			ln, err := net.Listen("tcp", serverConfig.Address)
			if err != nil {
				logger.Error("failed to listen",
					zap.String("op", "cmd.serve"),
					zap.String("address", serverConfig.Address),
					zap.Error(err),
				)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("rate limiting configured",
				zap.String("op", "cmd.serve"),
				zap.Int("requests", serverConfig.RateLimit.Requests),
				zap.Duration("window", serverConfig.RateLimitWindow()),
				zap.Bool("shared", serverConfig.Redis.Address != ""),
			)
			return server.Run(ctx, logger, server.NewHTTPServer(serverConfig, handler), ln)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override (e.g. :8080)")

	return cmd
}
