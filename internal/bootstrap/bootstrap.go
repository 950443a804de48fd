// Package bootstrap monta o pipeline de insights a partir da configuração; usado pela API e pela CLI.
package bootstrap

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-insights-api/infrastructure/integrator/gemini"
	"github.com/vfg2006/marketing-insights-api/infrastructure/integrator/gemini/geminiclient"
	"github.com/vfg2006/marketing-insights-api/infrastructure/repository"
	"github.com/vfg2006/marketing-insights-api/internal/config"
	"github.com/vfg2006/marketing-insights-api/internal/usecases/insighting"
)

// Pipeline agrupa o serviço montado e os recursos que precisam ser fechados
type Pipeline struct {
	Service *insighting.Service
	conn    *postgres.Connection
	client  *geminiclient.Client
}

func NewPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	logrus.Info("bootstrap: postgres connection established")

	client, err := geminiclient.New(ctx, cfg.Gemini)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "create gemini client")
	}

	gateway := gemini.New(client, cfg.Inference)

	service := insighting.NewService(
		cfg,
		gateway,
		repository.NewBusinessRepository(conn),
		repository.NewSocialAccountRepository(conn),
		repository.NewMetricSampleRepository(conn),
		repository.NewContentItemRepository(conn),
		repository.NewInsightRepository(conn),
	)

	return &Pipeline{Service: service, conn: conn, client: client}, nil
}

func (p *Pipeline) Close() {
	if err := p.client.Close(); err != nil {
		logrus.WithError(err).Warn("bootstrap: error closing gemini client")
	}
	if err := p.conn.Close(); err != nil {
		logrus.WithError(err).Warn("bootstrap: error closing postgres connection")
	}
}
