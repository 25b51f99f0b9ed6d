package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"tagsmith/internal/config"
	"tagsmith/internal/core/bpm"
	"tagsmith/internal/core/tagger"
	"tagsmith/internal/services"
	"tagsmith/internal/shared"
)

const toolVersion = "1.0.0"

var (
	configFile string
	serverURL  string
	debug      bool
	withLyrics bool
	withBPM    bool
	force      bool
)

var rootCmd = &cobra.Command{
	Use:     "tagsmith",
	Version: toolVersion,
	Short:   "A metadata tagger for local FLAC libraries.",
	Long: fmt.Sprintf(`Tagsmith (v%s)

A FLAC metadata tagger that groups your local files into albums, resolves
them against MusicBrainz (or a compatible metadata server), and rewrites
their tags with canonical album, track, and identifier fields. It can also:
- Fetch synced or plain lyrics for each track.
- Estimate and tag BPM using ffmpeg and an external analyzer.

Album lookups are cached on disk so repeat runs stay fast and offline-friendly.`, toolVersion),
}

var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Scan a directory and update FLAC tags from resolved album metadata.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, container := initServices()
		defer container.Close()

		if withBPM && !bpm.CheckFFmpeg(cfg.FFmpegPath) {
			colorError.Printf("❌ ffmpeg not found at %q, required for --bpm\n", cfg.FFmpegPath)
			os.Exit(1)
		}

		colorInfo.Println("🎵 Scanning", args[0])
		stats, err := container.Tagger.Run(context.Background(), args[0], tagger.Options{
			Lyrics: withLyrics,
			BPM:    withBPM,
			Force:  force,
		})
		if err != nil {
			colorError.Printf("❌ Update failed: %v\n", err)
			os.Exit(1)
		}
		if stats.GroupsSkipped > 0 {
			colorWarning.Printf("⚠️ %d album(s) could not be resolved\n", stats.GroupsSkipped)
		}
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the album metadata cache.",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached album records.",
	Run: func(cmd *cobra.Command, args []string) {
		_, container := initServices()
		defer container.Close()

		if err := container.Cache.Clear(); err != nil {
			colorError.Printf("❌ Failed to clear cache: %v\n", err)
			os.Exit(1)
		}
		colorSuccess.Println("✅ Cache cleared")
	},
}

var cacheDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "List all cached album records.",
	Run: func(cmd *cobra.Command, args []string) {
		_, container := initServices()
		defer container.Close()

		records, err := container.Cache.Dump()
		if err != nil {
			colorError.Printf("❌ Failed to read cache: %v\n", err)
			os.Exit(1)
		}
		if len(records) == 0 {
			colorInfo.Println("Cache is empty")
			return
		}

		keys := make([]string, 0, len(records))
		for key := range records {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			record := records[key]
			fmt.Printf("%s (%s, %d tracks)\n", key, record.Date, len(record.Tracks))
		}
	},
}

func initServices() (*config.Config, *services.ServiceContainer) {
	if err := config.EnsureConfigExists(configFile); err != nil {
		colorError.Printf("❌ Failed to create config at %s: %v\n", configFile, err)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if err := config.LoadConfig(configFile, cfg); err != nil {
		colorError.Printf("❌ Failed to load config from %s: %v\n", configFile, err)
		os.Exit(1)
	}

	// Command-line flags override config file
	if serverURL != "" {
		cfg.Resolver = config.ResolverServer
		cfg.ServerURL = serverURL
	}
	if err := cfg.Validate(); err != nil {
		colorError.Printf("❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	container, err := services.NewServiceContainer(cfg, toolVersion, debug)
	if err != nil {
		colorError.Printf("❌ Failed to initialize services: %v\n", err)
		os.Exit(1)
	}
	return cfg, container
}

func init() {
	shared.InitializeColors()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.json", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "Metadata server URL (overrides the MusicBrainz backend)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	updateCmd.Flags().BoolVar(&withLyrics, "lyrics", false, "Fetch and embed lyrics")
	updateCmd.Flags().BoolVar(&withBPM, "bpm", false, "Estimate and embed BPM")
	updateCmd.Flags().BoolVar(&force, "force", false, "Reprocess files already tagged by this tool")

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheDumpCmd)

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
