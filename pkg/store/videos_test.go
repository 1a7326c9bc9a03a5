package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clipstream/pkg/models"
)

func TestListEmptyIsNotAnError(t *testing.T) {
	videos := NewVideos(testDB(t))

	got, err := videos.List()
	require.NoError(t, err)
	require.Empty(t, got)
	require.NotNil(t, got)
}

func TestListNewestFirst(t *testing.T) {
	videos := NewVideos(testDB(t))

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"old", "mid", "new"} {
		_, err := videos.Create(&models.Video{
			Title:       title,
			Description: "d",
			VideoURL:    "/v/" + title,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	got, err := videos.List()
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "new", got[0].Title)
	require.Equal(t, "mid", got[1].Title)
	require.Equal(t, "old", got[2].Title)
}

func TestCreateRequiresFields(t *testing.T) {
	db := testDB(t)
	videos := NewVideos(db)

	cases := []struct {
		name  string
		video models.Video
	}{
		{name: "missing title", video: models.Video{Description: "d", VideoURL: "/v"}},
		{name: "missing description", video: models.Video{Title: "t", VideoURL: "/v"}},
		{name: "missing videoUrl", video: models.Video{Title: "t", Description: "d"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := videos.Create(&tc.video)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	var count int
	require.NoError(t, db.Model(&models.Video{}).Count(&count).Error)
	require.Equal(t, 0, count)
}

func TestCreateReturnsStoredRecord(t *testing.T) {
	videos := NewVideos(testDB(t))

	got, err := videos.Create(&models.Video{Title: "t", Description: "d", VideoURL: "/v"})
	require.NoError(t, err)
	require.NotZero(t, got.ID)
	require.False(t, got.CreatedAt.IsZero())
	require.Equal(t, models.DefaultQuality, got.Transformation.Quality)
}
