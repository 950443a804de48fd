package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

func TestContentItemRepository_ListByAccountsAndRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	window := domain.TimeRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
	}
	published := window.Start.Add(26 * time.Hour)

	columns := []string{
		"id", "social_account_id", "platform", "content_id", "content_type",
		"title", "description", "url", "thumbnail_url",
		"published_at", "likes", "comments", "shares", "views", "content_metadata",
		"video_id", "video_url",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM content c JOIN social_accounts sa ON sa.id = c.social_account_id")).
		WithArgs("acc-1", "acc-2", window.Start, window.End).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("c-1", "acc-1", "tiktok", "tt-1", "video", "Unboxing", "", "https://x/v/1", "", published,
				int64(80), int64(10), int64(10), int64(1000), []byte(`{"hashtags":["#promo"],"music":"lofi"}`),
				"vid-1", "https://cdn/v1.mp4").
			AddRow("c-2", "acc-2", "instagram", "ig-1", "image", "Foto", "", "", "", published,
				int64(5), int64(0), int64(0), int64(0), nil, "", ""))

	repo := NewContentItemRepository(db)
	items, err := repo.ListByAccountsAndRange(context.Background(), []string{"acc-1", "acc-2"}, window)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, domain.ContentTypeVideo, items[0].ContentType)
	assert.Equal(t, "tiktok", items[0].Platform)
	assert.Equal(t, "lofi", items[0].Metadata["music"])
	assert.Equal(t, []any{"#promo"}, items[0].Metadata["hashtags"])
	assert.Equal(t, "https://cdn/v1.mp4", items[0].VideoURL)
	assert.InDelta(t, 0.1, items[0].EngagementRate(), 1e-9)

	assert.Nil(t, items[1].Metadata)
	assert.Equal(t, 0.0, items[1].EngagementRate())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentItemRepository_NoAccounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	items, err := NewContentItemRepository(db).ListByAccountsAndRange(context.Background(), nil, domain.TimeRange{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricSampleRepository_ListByAccountsAndRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	window := domain.TimeRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
	}

	columns := []string{"id", "social_account_id", "timestamp", "followers", "likes", "comments", "shares", "views", "platform_data"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM social_metrics sm WHERE sm.social_account_id IN ($1)")).
		WithArgs("acc-1", window.Start, window.End).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("m-1", "acc-1", window.Start, int64(1000), int64(50), int64(5), int64(2), int64(900), []byte(`{"reach":1200}`)).
			AddRow("m-2", "acc-1", window.Start.Add(time.Hour), int64(1010), int64(55), int64(6), int64(3), int64(950), nil))

	samples, err := NewMetricSampleRepository(db).ListByAccountsAndRange(context.Background(), []string{"acc-1"}, window)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, int64(1010), samples[1].Followers)
	assert.Equal(t, float64(1200), samples[0].PlatformData["reach"])
	assert.Nil(t, samples[1].PlatformData)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM businesses b WHERE b.id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "industry", "created_at"}))

	business, err := NewBusinessRepository(db).GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, business)
	assert.NoError(t, mock.ExpectationsWereMet())
}
