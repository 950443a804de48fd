package insighting

import (
	"sort"
	"time"

	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

const defaultTopContentLimit = 5

// Aggregator reduz métricas e conteúdo de uma janela em estatísticas resumidas. Não tem efeitos colaterais.
type Aggregator struct {
	topN int
}

func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = defaultTopContentLimit
	}
	return &Aggregator{topN: topN}
}

// Aggregate filtra amostras e conteúdo pela janela semiaberta e calcula o resumo.
// Sem nenhum item na janela o resultado vem com InsufficientData e campos numéricos zerados.
func (a *Aggregator) Aggregate(samples []*domain.MetricSample, items []*domain.ContentItem, window domain.TimeRange) *domain.AggregationResult {
	result := &domain.AggregationResult{Window: window}

	inWindow := make([]*domain.MetricSample, 0, len(samples))
	for _, s := range samples {
		if s != nil && window.Contains(s.Timestamp) {
			inWindow = append(inWindow, s)
		}
	}
	ranked := RankContent(items, window)

	result.MetricSampleCount = len(inWindow)
	result.ContentCount = len(ranked)
	result.SampleCount = result.MetricSampleCount + result.ContentCount

	if result.SampleCount == 0 {
		result.InsufficientData = true
		return result
	}

	a.aggregateFollowers(result, inWindow)
	a.aggregateCounters(result, inWindow, ranked)
	a.aggregateContent(result, ranked)

	return result
}

// aggregateFollowers: delta por conta é última menos primeira amostra; o negócio soma as contas.
func (a *Aggregator) aggregateFollowers(result *domain.AggregationResult, samples []*domain.MetricSample) {
	if len(samples) == 0 {
		return
	}

	ordered := append([]*domain.MetricSample(nil), samples...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	type span struct{ first, last *domain.MetricSample }
	spans := make(map[string]*span)
	var followerSum int64

	for _, s := range ordered {
		followerSum += s.Followers
		sp, ok := spans[s.SocialAccountID]
		if !ok {
			spans[s.SocialAccountID] = &span{first: s, last: s}
			continue
		}
		sp.last = s
	}

	for _, sp := range spans {
		result.TotalFollowers += sp.last.Followers
		result.FollowerDelta += sp.last.Followers - sp.first.Followers
	}
	result.AverageFollowers = float64(followerSum) / float64(len(ordered))
}

// aggregateCounters usa os contadores do conteúdo; sem conteúdo na janela, cai para os das amostras de conta.
func (a *Aggregator) aggregateCounters(result *domain.AggregationResult, samples []*domain.MetricSample, items []*domain.ContentItem) {
	n := len(items)
	if n > 0 {
		for _, it := range items {
			result.TotalLikes += it.Likes
			result.TotalComments += it.Comments
			result.TotalShares += it.Shares
			result.TotalViews += it.Views
		}
	} else {
		n = len(samples)
		for _, s := range samples {
			result.TotalLikes += s.Likes
			result.TotalComments += s.Comments
			result.TotalShares += s.Shares
			result.TotalViews += s.Views
		}
	}

	result.AvgLikes = float64(result.TotalLikes) / float64(n)
	result.AvgComments = float64(result.TotalComments) / float64(n)
	result.AvgShares = float64(result.TotalShares) / float64(n)
	result.AvgViews = float64(result.TotalViews) / float64(n)
	result.EngagementRate = domain.EngagementRate(result.TotalLikes, result.TotalComments, result.TotalShares, result.TotalViews)
}

func (a *Aggregator) aggregateContent(result *domain.AggregationResult, ranked []*domain.ContentItem) {
	result.BestPostingHour = -1
	if len(ranked) == 0 {
		return
	}

	rates := make([]float64, 0, len(ranked))
	byType := make(map[string][]float64)
	byWeekday := make(map[time.Weekday][]float64)
	byHour := make(map[int][]float64)
	platforms := make(map[string]struct{})

	for _, it := range ranked {
		rate := it.EngagementRate()
		rates = append(rates, rate)

		contentType := string(it.ContentType)
		if contentType == "" {
			contentType = "unknown"
		}
		byType[contentType] = append(byType[contentType], rate)

		published := it.PublishedAt.UTC()
		byWeekday[published.Weekday()] = append(byWeekday[published.Weekday()], rate)
		byHour[published.Hour()] = append(byHour[published.Hour()], rate)

		if it.Platform != "" {
			platforms[it.Platform] = struct{}{}
		}
	}

	result.MeanEngagementRate = mean(rates)
	result.MedianEngagementRate = median(rates)

	limit := a.topN
	if limit > len(ranked) {
		limit = len(ranked)
	}
	result.TopContent = make([]domain.RankedContent, 0, limit)
	for _, it := range ranked[:limit] {
		result.TopContent = append(result.TopContent, domain.RankedContent{
			ContentID:      it.ContentID,
			ContentType:    it.ContentType,
			Title:          it.Title,
			PublishedAt:    it.PublishedAt.UTC().Format(time.RFC3339),
			Likes:          it.Likes,
			Comments:       it.Comments,
			Shares:         it.Shares,
			Views:          it.Views,
			EngagementRate: it.EngagementRate(),
			Metadata:       it.Metadata,
		})
	}

	result.ContentTypes = make(map[string]domain.ContentTypeStats, len(byType))
	for t, rs := range byType {
		result.ContentTypes[t] = domain.ContentTypeStats{Count: len(rs), MeanEngagementRate: mean(rs)}
	}

	bestWeekday, bestWeekdayRate := time.Sunday, -1.0
	for d := time.Sunday; d <= time.Saturday; d++ {
		if rs, ok := byWeekday[d]; ok && mean(rs) > bestWeekdayRate {
			bestWeekday, bestWeekdayRate = d, mean(rs)
		}
	}
	result.BestPostingWeekday = bestWeekday.String()

	bestHourRate := -1.0
	for h := 0; h < 24; h++ {
		if rs, ok := byHour[h]; ok && mean(rs) > bestHourRate {
			result.BestPostingHour, bestHourRate = h, mean(rs)
		}
	}

	result.Platforms = make([]string, 0, len(platforms))
	for p := range platforms {
		result.Platforms = append(result.Platforms, p)
	}
	sort.Strings(result.Platforms)
}

// RankContent devolve o conteúdo publicado na janela ordenado por taxa de engajamento.
// Empates: mais visualizações, depois publicação mais antiga, depois content id.
func RankContent(items []*domain.ContentItem, window domain.TimeRange) []*domain.ContentItem {
	ranked := make([]*domain.ContentItem, 0, len(items))
	for _, it := range items {
		if it != nil && window.Contains(it.PublishedAt) {
			ranked = append(ranked, it)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i].EngagementRate(), ranked[j].EngagementRate()
		if ri != rj {
			return ri > rj
		}
		if ranked[i].Views != ranked[j].Views {
			return ranked[i].Views > ranked[j].Views
		}
		if !ranked[i].PublishedAt.Equal(ranked[j].PublishedAt) {
			return ranked[i].PublishedAt.Before(ranked[j].PublishedAt)
		}
		return ranked[i].ContentID < ranked[j].ContentID
	})

	return ranked
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
