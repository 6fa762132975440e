package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/vendor-matcher/internal/logger"
	"github.com/spigell/vendor-matcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address (default is :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the vendor-matcher", zap.String("version", version))

	recommender, err := newRecommender(ctx, config, logger)
	if err != nil {
		logger.Fatal("setting up the recommender", zap.Error(err))
	}

	addr := ""
	opts := server.Options{}
	if config.Server != nil {
		addr = config.Server.Addr
		if limit := config.Server.RateLimit; limit != nil {
			opts.RecommendLimit = server.RateLimit{PerMinute: limit.RequestsPerMinute, Burst: limit.Burst}
		}
	}

	router := server.NewRouter(recommender, logger, opts)
	if err := server.Run(ctx, addr, router, logger); err != nil {
		logger.Fatal("serving http", zap.Error(err))
	}
}
