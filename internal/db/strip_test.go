package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zcsoft/videotimeline/internal/models"
)

func createTestMedia(t *testing.T, repos *Repositories) *models.Media {
	t.Helper()
	media := testMedia("/videos/" + uuid.NewString() + ".mp4")
	require.NoError(t, repos.Media.Create(context.Background(), media))
	return media
}

func testStrip(mediaID uuid.UUID) *models.Strip {
	return models.NewStrip(mediaID, 1.5, 80, 66.67, 50, "/data/strips/"+mediaID.String())
}

func TestStripRepository_CreateAndGet(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	media := createTestMedia(t, repos)
	strip := testStrip(media.ID)
	require.NoError(t, repos.Strips.Create(ctx, strip))

	got, err := repos.Strips.GetByID(ctx, strip.ID)
	require.NoError(t, err)
	assert.Equal(t, media.ID, got.MediaID)
	assert.Equal(t, 1.5, got.Interval)
	assert.Equal(t, 80, got.ThumbCount)
	assert.Equal(t, models.StripStatePending, got.State)
	assert.Zero(t, got.GeneratedCount)
}

func TestStripRepository_GetByMediaID(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	media := createTestMedia(t, repos)
	strip := testStrip(media.ID)
	require.NoError(t, repos.Strips.Create(ctx, strip))

	got, err := repos.Strips.GetByMediaID(ctx, media.ID)
	require.NoError(t, err)
	assert.Equal(t, strip.ID, got.ID)

	_, err = repos.Strips.GetByMediaID(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestStripRepository_Replace(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	media := createTestMedia(t, repos)
	first := testStrip(media.ID)
	require.NoError(t, repos.Strips.Replace(ctx, first))

	// Replacing swaps the strip atomically; the unique media index would
	// reject a plain second insert
	second := testStrip(media.ID)
	require.NoError(t, repos.Strips.Replace(ctx, second))

	got, err := repos.Strips.GetByMediaID(ctx, media.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = repos.Strips.GetByID(ctx, first.ID)
	assert.True(t, IsNotFound(err))
}

func TestStripRepository_UpdateProgress(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	media := createTestMedia(t, repos)
	strip := testStrip(media.ID)
	require.NoError(t, repos.Strips.Create(ctx, strip))

	require.NoError(t, repos.Strips.UpdateProgress(ctx, strip.ID, 42))

	got, err := repos.Strips.GetByID(ctx, strip.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, got.GeneratedCount)
}

func TestStripRepository_UpdateState(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	media := createTestMedia(t, repos)
	strip := testStrip(media.ID)
	require.NoError(t, repos.Strips.Create(ctx, strip))

	require.NoError(t, repos.Strips.UpdateState(ctx, strip.ID, models.StripStateGenerating))
	require.NoError(t, repos.Strips.UpdateState(ctx, strip.ID, models.StripStateReady))

	got, err := repos.Strips.GetByID(ctx, strip.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StripStateReady, got.State)
	assert.True(t, got.IsReady())
}

func TestStripRepository_Delete(t *testing.T) {
	_, repos := setupTestDB(t)
	ctx := context.Background()

	media := createTestMedia(t, repos)
	strip := testStrip(media.ID)
	require.NoError(t, repos.Strips.Create(ctx, strip))

	require.NoError(t, repos.Strips.Delete(ctx, strip.ID))

	_, err := repos.Strips.GetByID(ctx, strip.ID)
	assert.True(t, IsNotFound(err))
}
