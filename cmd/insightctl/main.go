package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-insights-api/internal/bootstrap"
	"github.com/vfg2006/marketing-insights-api/internal/config"
	"github.com/vfg2006/marketing-insights-api/internal/usecases/insighting"
	"github.com/vfg2006/marketing-insights-api/pkg/log"
)

func main() {
	if err := newRootCmd(loadPipeline).Execute(); err != nil {
		os.Exit(1)
	}
}

func loadPipeline(ctx context.Context) (*config.Config, insighting.Runner, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	log.Setup(cfg.App.LogLevel)

	pipeline, err := bootstrap.NewPipeline(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	logrus.Debug("insightctl: pipeline ready")

	return cfg, pipeline.Service, pipeline.Close, nil
}
