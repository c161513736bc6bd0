package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/floodsafe/routing/pkg/engine"
	"github.com/floodsafe/routing/pkg/facility"
	"github.com/floodsafe/routing/pkg/hazard"
	"github.com/floodsafe/routing/pkg/http"
	"github.com/floodsafe/routing/pkg/http/usecases"
	"github.com/floodsafe/routing/pkg/logger"
	"github.com/floodsafe/routing/pkg/routeprovider"
	"github.com/floodsafe/routing/pkg/util"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	useRateLimit = flag.Bool("use_rate_limit", false, "rate limit API requests per client IP")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		logger.Warn("config file not loaded, using defaults", zap.Error(err))
	}

	oracle := hazard.NewOracle(hazard.DefaultConfig(os.Getenv("ML_API_URL")), logger)

	orsClient, err := routeprovider.NewClient(routeprovider.DefaultConfig(os.Getenv("ORS_API_KEY")), logger)
	if err != nil {
		panic(err)
	}

	facilityClient := facility.NewClient(facility.DefaultConfig(), logger)
	geocoder := facility.NewGeocoder("https://geocoding-api.open-meteo.com", 8*time.Second)

	planner := engine.NewRoutePlanner(logger, facilityClient, orsClient, oracle, engine.DefaultOptions())

	routingService := usecases.NewRoutingService(logger, planner, geocoder,
		oracle.Cache().Len, facilityClient.Cache().Len)

	api := http.NewServer(logger)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	api.Use(ctx,
		logger, *useRateLimit, routingService)

	signal := http.GracefulShutdown()

	logger.Info("Safe Routing Server Stopped", zap.String("signal", signal.String()))
	cleanup()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
