//go:build integration
// +build integration

package integration

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/zcsoft/videotimeline/internal/api"
	"github.com/zcsoft/videotimeline/internal/config"
	"github.com/zcsoft/videotimeline/internal/db"
	"github.com/zcsoft/videotimeline/internal/models"
	"github.com/zcsoft/videotimeline/internal/session"
	"github.com/zcsoft/videotimeline/internal/strips"
	"github.com/zcsoft/videotimeline/internal/thumbs"
)

// setupTestDB creates a migrated temporary database
func setupTestDB(t *testing.T) (*db.DB, *db.Repositories) {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile)
	require.NoError(t, err, "Failed to create test database")
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err, "Failed to get SQL DB")

	// Resolve the migrations directory relative to this file so tests work
	// regardless of working directory
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")

	testDir := filepath.Dir(filename)
	rootDir := filepath.Dir(filepath.Dir(testDir))
	migrationsPath := "file://" + filepath.Join(rootDir, "migrations")

	require.NoError(t, db.RunMigrations(sqlDB, migrationsPath), "Failed to run migrations")

	return database, db.NewRepositories(database)
}

// testConfig returns application configuration tuned for fast tests
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Media: config.MediaConfig{
			StripPath: t.TempDir(),
		},
		Timeline: config.TimelineConfig{
			RowHeight:          50,
			MinThumbnails:      20,
			MaxThumbnails:      100,
			NaiveInterval:      1.0,
			SeekThrottle:       300 * time.Millisecond,
			TickInterval:       5 * time.Millisecond,
			FinishResetDelay:   20 * time.Millisecond,
			SessionGracePeriod: time.Hour,
			CleanupInterval:    time.Hour,
		},
	}
}

// stubGenerator produces frame results without invoking ffmpeg
type stubGenerator struct {
	delay time.Duration
}

func (g *stubGenerator) Generate(ctx context.Context, req thumbs.Request, sink func(thumbs.Result)) error {
	for i := 0; i < req.Count; i++ {
		select {
		case <-ctx.Done():
			return thumbs.ErrCancelled
		default:
		}
		if g.delay > 0 {
			time.Sleep(g.delay)
		}
		sink(thumbs.Result{
			Path:  thumbs.FramePath(req.OutputDir, i),
			Index: i,
			Total: req.Count,
		})
	}
	return nil
}

// setupStack wires the full service stack over a test database
func setupStack(t *testing.T) (*db.Repositories, *strips.Service, *session.Manager) {
	t.Helper()

	_, repos := setupTestDB(t)
	cfg := testConfig(t)

	stripService := strips.NewService(repos, &stubGenerator{}, cfg)
	t.Cleanup(stripService.Stop)

	manager := session.NewManager(stripService, &cfg.Timeline)
	t.Cleanup(manager.Stop)

	return repos, stripService, manager
}

// newSlowStripService builds a strip service whose generator takes a few
// milliseconds per frame, leaving time to act mid-run
func newSlowStripService(t *testing.T, repos *db.Repositories, cfg *config.Config) *strips.Service {
	t.Helper()
	service := strips.NewService(repos, &stubGenerator{delay: 2 * time.Millisecond}, cfg)
	t.Cleanup(service.Stop)
	return service
}

// newManager builds a session manager over the given strip service
func newManager(t *testing.T, service *strips.Service, cfg *config.Config) *session.Manager {
	t.Helper()
	manager := session.NewManager(service, &cfg.Timeline)
	t.Cleanup(manager.Stop)
	return manager
}

// setupTestRouter creates a test Gin router with all routes configured
func setupTestRouter(repos *db.Repositories, stripService *strips.Service, manager *session.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	apiGroup := router.Group("/api")
	api.SetupMediaRoutes(apiGroup, repos)
	api.SetupTimelineRoutes(apiGroup, stripService, repos)
	api.SetupSessionRoutes(apiGroup, manager, stripService, repos)

	return router
}

// createTestMediaInDB creates a media item directly in the database
func createTestMediaInDB(t *testing.T, repos *db.Repositories, duration float64) *models.Media {
	t.Helper()

	mediaItem := models.NewMedia("/videos/"+uuid.NewString()+".mp4", "Test Video", duration)
	mediaItem.Width = 1920
	mediaItem.Height = 1080

	videoCodec := "h264"
	audioCodec := "aac"
	fileSize := int64(1 << 30)
	mediaItem.VideoCodec = &videoCodec
	mediaItem.AudioCodec = &audioCodec
	mediaItem.FileSize = &fileSize

	require.NoError(t, repos.Media.Create(context.Background(), mediaItem), "Failed to create test media")
	return mediaItem
}

// waitForStripReady polls until the media's strip reaches the ready state
func waitForStripReady(t *testing.T, service *strips.Service, mediaID uuid.UUID) *models.Strip {
	t.Helper()

	var strip *models.Strip
	require.Eventually(t, func() bool {
		got, err := service.Get(context.Background(), mediaID)
		if err != nil {
			return false
		}
		strip = got
		return got.IsReady()
	}, 10*time.Second, 10*time.Millisecond, "Strip never became ready")
	return strip
}
