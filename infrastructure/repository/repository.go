// Package repository implementa o colaborador de datastore do pipeline de insights sobre Postgres.
package repository

import (
	jsoniter "github.com/json-iterator/go"
)

//go:generate mockgen -source=business.go -destination=mocks/business.go -package=mocks
//go:generate mockgen -source=social_account.go -destination=mocks/social_account.go -package=mocks
//go:generate mockgen -source=metric_sample.go -destination=mocks/metric_sample.go -package=mocks
//go:generate mockgen -source=content_item.go -destination=mocks/content_item.go -package=mocks
//go:generate mockgen -source=insight.go -destination=mocks/insight.go -package=mocks

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// decodePayload preserva o JSONB como mapa opaco; NULL vira nil.
func decodePayload(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
