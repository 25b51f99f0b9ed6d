// Package services wires the application's components together.
package services

import (
	"fmt"

	"tagsmith/internal/api/lrclib"
	"tagsmith/internal/api/metaserver"
	"tagsmith/internal/api/musicbrainz"
	"tagsmith/internal/cache"
	"tagsmith/internal/config"
	"tagsmith/internal/core/bpm"
	"tagsmith/internal/core/resolver"
	"tagsmith/internal/core/tagger"
	"tagsmith/internal/interfaces"
	"tagsmith/internal/shared"
	"tagsmith/internal/tagio"
)

// ServiceContainer holds all application services
type ServiceContainer struct {
	Config           *config.Config
	Cache            interfaces.Cache
	Remote           interfaces.Resolver
	Lyrics           interfaces.LyricsProvider
	Decoder          interfaces.Decoder
	Estimator        interfaces.Estimator
	Tags             interfaces.TagStore
	WarningCollector *shared.WarningCollector
	Tagger           *tagger.Tagger
}

// NewServiceContainer creates a new service container with all services initialized
func NewServiceContainer(cfg *config.Config, version string, debug bool) (*ServiceContainer, error) {
	// Create warning collector first as other services report into it
	warningCollector := shared.NewWarningCollector(true)

	// Open the album record cache
	store, err := cache.Open(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	// Select the metadata lookup backend
	remote, err := newRemote(cfg, debug)
	if err != nil {
		store.Close()
		return nil, err
	}

	lyrics := lrclib.NewClient(cfg.LyricsURL, cfg.MaxRetryAttempts, debug)
	decoder := bpm.NewFFmpegDecoder(cfg.FFmpegPath)
	estimator := bpm.NewCommandEstimator(cfg.AnalyzerPath)
	tags := tagio.NewStore()

	albums := resolver.NewAlbumResolver(store, remote)
	tg := tagger.New(tags, albums, lyrics, decoder, estimator, warningCollector, version)

	return &ServiceContainer{
		Config:           cfg,
		Cache:            store,
		Remote:           remote,
		Lyrics:           lyrics,
		Decoder:          decoder,
		Estimator:        estimator,
		Tags:             tags,
		WarningCollector: warningCollector,
		Tagger:           tg,
	}, nil
}

func newRemote(cfg *config.Config, debug bool) (interfaces.Resolver, error) {
	switch cfg.Resolver {
	case config.ResolverServer:
		return metaserver.NewClient(cfg.ServerURL, cfg.MaxRetryAttempts, debug), nil
	case config.ResolverMusicBrainz, "":
		mbConfig := musicbrainz.DefaultConfig()
		mbConfig.MaxRetries = cfg.MaxRetryAttempts
		mbConfig.Debug = debug
		mbConfig.CumulativeDiscOffsets = cfg.CumulativeDiscOffsets
		return musicbrainz.NewClientWithConfig(mbConfig), nil
	default:
		return nil, fmt.Errorf("unknown resolver backend %q", cfg.Resolver)
	}
}

// Close releases resources held by the container.
func (sc *ServiceContainer) Close() error {
	return sc.Cache.Close()
}
