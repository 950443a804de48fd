package insighting

import (
	"context"
	"fmt"
	"sync"

	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

// businessData carrega uma única vez por execução as entradas de um negócio, compartilhadas entre suas unidades.
type businessData struct {
	business *domain.Business

	once    sync.Once
	samples []*domain.MetricSample
	items   []*domain.ContentItem
	err     error
}

func (d *businessData) load(ctx context.Context, s *Service, window domain.TimeRange) (*businessData, error) {
	d.once.Do(func() {
		accounts, err := s.accountRepo.ListByBusinessID(ctx, d.business.ID)
		if err != nil {
			d.err = fmt.Errorf("load social accounts: %w", err)
			return
		}

		accountIDs := make([]string, 0, len(accounts))
		for _, acc := range accounts {
			accountIDs = append(accountIDs, acc.ID)
		}
		if len(accountIDs) == 0 {
			return
		}

		if d.samples, err = s.metricRepo.ListByAccountsAndRange(ctx, accountIDs, window); err != nil {
			d.err = fmt.Errorf("load metric samples: %w", err)
			return
		}
		if d.items, err = s.contentRepo.ListByAccountsAndRange(ctx, accountIDs, window); err != nil {
			d.err = fmt.Errorf("load content: %w", err)
			return
		}
	})

	return d, d.err
}

type excerptEntry struct {
	ContentID string         `json:"content_id"`
	Title     string         `json:"title"`
	Metadata  map[string]any `json:"metadata"`
}

// contentExcerpt serializa os metadados do top conteúdo sem interpretá-los.
func contentExcerpt(result *domain.AggregationResult) string {
	if len(result.TopContent) == 0 {
		return ""
	}

	entries := make([]excerptEntry, 0, len(result.TopContent))
	for _, c := range result.TopContent {
		entries = append(entries, excerptEntry{ContentID: c.ContentID, Title: c.Title, Metadata: c.Metadata})
	}

	return marshalExcerpt(entries)
}

func videoExcerpt(items []*domain.ContentItem, ref *domain.VideoRef) string {
	for _, it := range items {
		if it.ContentID == ref.ContentID {
			return marshalExcerpt([]excerptEntry{{ContentID: it.ContentID, Title: it.Title, Metadata: it.Metadata}})
		}
	}
	return ""
}

func marshalExcerpt(entries []excerptEntry) string {
	out, err := summaryJSON.Marshal(entries)
	if err != nil {
		return ""
	}
	return string(out)
}

// pickVideo escolhe o conteúdo com vídeo mais bem ranqueado da janela.
func pickVideo(items []*domain.ContentItem, window domain.TimeRange) *domain.VideoRef {
	for _, it := range RankContent(items, window) {
		if ref := it.VideoRef(); ref != nil {
			return ref
		}
	}
	return nil
}
