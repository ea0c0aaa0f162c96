// Package cmd implements the urlpipe CLI using Cobra.
// Configuration comes from flags and URLPIPE_* environment variables.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "urlpipe",
	Short: "Resolve a URL into normalized text",
	Long: `urlpipe resolves an arbitrary URL (tweet, YouTube video, Instagram Reel,
PDF, or any webpage) into normalized text, trying multiple extraction
strategies in order: transcript APIs, audio transcription, direct and
anti-bot HTTP fetches, and headless-browser snapshots.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig binds URLPIPE_* environment variables and sets defaults for
// the external tool locations.
func initConfig() {
	viper.SetEnvPrefix("URLPIPE")
	viper.AutomaticEnv()

	viper.SetDefault("singlefile_path", "single-file")
	viper.SetDefault("ffmpeg_path", "ffmpeg")
	viper.SetDefault("ytdlp_path", "yt-dlp")
	viper.SetDefault("whisper_url", "https://api.openai.com/v1/audio/transcriptions")
	viper.SetDefault("whisper_api_key", "")
	viper.SetDefault("cookies_file", "")
	viper.SetDefault("log_level", "info")
}

// newLogger builds the process logger from the configured level.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	level, err := log.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		logger.Warn("unknown log level, using info", "level", viper.GetString("log_level"))
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
