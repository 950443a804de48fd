package main

import (
	"context"
	"os"
	"path"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-insights-api/internal/api"
	"github.com/vfg2006/marketing-insights-api/internal/bootstrap"
	"github.com/vfg2006/marketing-insights-api/internal/config"
	"github.com/vfg2006/marketing-insights-api/internal/scheduler"
	"github.com/vfg2006/marketing-insights-api/pkg/log"
)

func main() {
	chdirToSource()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	log.Setup(cfg.App.LogLevel)
	logrus.Infof("main: log level set to %s", logrus.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline, err := bootstrap.NewPipeline(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("main: failed to build insight pipeline")
	}
	defer pipeline.Close()

	insightSyncService, err := scheduler.NewInsightGenerationSyncService(pipeline.Service, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("main: invalid insight sync configuration")
	}

	// Inicia o agendador em background
	if err := insightSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("main: failed to start insight sync scheduler")
	}

	server, err := api.New(cfg, pipeline.Service, insightSyncService)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// chdirToSource permite achar o .env ao rodar com go run
func chdirToSource() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	_ = os.Chdir(dir)
}
