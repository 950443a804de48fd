package main

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-insights-api/internal/config"
	"github.com/vfg2006/marketing-insights-api/pkg/log"
)

//go:embed schema.sql
var schema string

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.WithError(err).Fatal("migration: failed to load configuration")
	}
	log.Setup(cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("migration: failed to connect to PostgreSQL")
	}
	defer conn.Close()

	if err := apply(ctx, conn, schema); err != nil {
		logrus.WithError(err).Error("migration: schema not applied")
		os.Exit(1)
	}

	logrus.Info("migration: schema applied")
}

// apply executa cada instrução do schema numa única transação
func apply(ctx context.Context, conn postgres.Conn, ddl string) error {
	statements := splitStatements(ddl)
	startTime := time.Now()

	err := conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				var pqErr *pq.Error
				if errors.As(err, &pqErr) {
					logrus.WithFields(logrus.Fields{
						"statement": i + 1,
						"code":      pqErr.Code,
						"detail":    pqErr.Detail,
					}).Error("migration: statement failed")
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"statements": len(statements),
		"elapsed":    time.Since(startTime).String(),
	}).Info("migration: statements executed")
	return nil
}

func splitStatements(ddl string) []string {
	parts := strings.Split(ddl, ";")
	statements := make([]string, 0, len(parts))
	for _, p := range parts {
		if stmt := strings.TrimSpace(p); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
