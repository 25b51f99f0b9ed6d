package services

import (
	"testing"

	"tagsmith/internal/api/metaserver"
	"tagsmith/internal/api/musicbrainz"
	"tagsmith/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Resolver:         config.ResolverMusicBrainz,
		CacheDir:         t.TempDir(),
		LyricsURL:        "https://lrclib.net",
		MaxRetryAttempts: 3,
		FFmpegPath:       "ffmpeg",
		AnalyzerPath:     "bpm",
	}
}

func TestNewServiceContainer(t *testing.T) {
	container, err := NewServiceContainer(testConfig(t), "test", false)
	if err != nil {
		t.Fatalf("Failed to create service container: %v", err)
	}
	defer container.Close()

	// Verify all services are initialized
	if container.Cache == nil {
		t.Error("Cache service not initialized")
	}
	if container.Remote == nil {
		t.Error("Remote resolver not initialized")
	}
	if container.Lyrics == nil {
		t.Error("Lyrics service not initialized")
	}
	if container.Decoder == nil {
		t.Error("Decoder not initialized")
	}
	if container.Estimator == nil {
		t.Error("Estimator not initialized")
	}
	if container.Tags == nil {
		t.Error("Tag store not initialized")
	}
	if container.WarningCollector == nil {
		t.Error("WarningCollector not initialized")
	}
	if container.Tagger == nil {
		t.Error("Tagger not initialized")
	}

	if _, ok := container.Remote.(*musicbrainz.Client); !ok {
		t.Errorf("Expected MusicBrainz backend, got %T", container.Remote)
	}
}

func TestNewServiceContainerServerBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Resolver = config.ResolverServer
	cfg.ServerURL = "http://localhost:8000"

	container, err := NewServiceContainer(cfg, "test", false)
	if err != nil {
		t.Fatalf("Failed to create service container: %v", err)
	}
	defer container.Close()

	if _, ok := container.Remote.(*metaserver.Client); !ok {
		t.Errorf("Expected metadata server backend, got %T", container.Remote)
	}
}

func TestNewServiceContainerUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Resolver = "gracenote"

	if _, err := NewServiceContainer(cfg, "test", false); err == nil {
		t.Error("Expected error for unknown resolver backend")
	}
}
