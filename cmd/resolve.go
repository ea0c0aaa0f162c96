// resolve command: wires the concrete strategies together and runs the
// pipeline once for the given URL, printing the resolved text to stdout.
package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hayashi-geek/urlpipe/core/fetch"
	"github.com/hayashi-geek/urlpipe/core/htmlconv"
	"github.com/hayashi-geek/urlpipe/core/media"
	"github.com/hayashi-geek/urlpipe/core/pipeline"
	"github.com/hayashi-geek/urlpipe/core/snapshot"
)

var (
	flagText      bool
	flagLanguages []string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolve a URL into normalized text",
	Long: `Resolve normalizes the URL's domain, classifies it, and tries the
matching extraction strategies in order, printing the first usable result.

Examples:
  urlpipe resolve https://x.com/someuser/status/1234567890
  urlpipe resolve https://www.youtube.com/watch?v=dQw4w9WgXcQ
  urlpipe resolve https://example.com/paper.pdf --text`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().BoolVar(&flagText, "text", false, "Output plain text instead of markdown")
	resolveCmd.Flags().StringSliceVar(&flagLanguages, "languages", nil, "Caption language preference order")
	resolveCmd.Flags().String("cookies-file", "", "Browser cookies file for the snapshot renderer")
	viper.BindPFlag("cookies_file", resolveCmd.Flags().Lookup("cookies-file"))
}

func runResolve(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	mode := htmlconv.ModeMarkdown
	if flagText {
		mode = htmlconv.ModeText
	}
	conv := htmlconv.New(mode)

	downloader := &media.YtdlpDownloader{
		YtdlpPath:  viper.GetString("ytdlp_path"),
		FFmpegPath: viper.GetString("ffmpeg_path"),
	}
	transcriber := media.NewWhisperClient(nil,
		viper.GetString("whisper_url"),
		viper.GetString("whisper_api_key"))

	p, err := pipeline.New(pipeline.Options{
		Logger:     logger,
		HTTP:       fetch.NewHTTP(nil, conv),
		Scraper:    fetch.NewScraper(conv),
		PDF:        fetch.NewPDF(nil),
		Transcript: media.NewTranscript(nil, flagLanguages),
		Audio:      media.NewAudio(downloader, transcriber, viper.GetString("ffmpeg_path"), 0),
		Snapshot:   snapshot.New(newSnapshotter(), conv, 0),
	})
	if err != nil {
		return err
	}

	text, err := p.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, text)
	return nil
}

// newSnapshotter prefers the external single-file executable and falls back
// to in-process headless Chrome when it is not installed.
func newSnapshotter() snapshot.Snapshotter {
	path := viper.GetString("singlefile_path")
	if resolved, err := exec.LookPath(path); err == nil {
		return &snapshot.SingleFile{
			Path:        resolved,
			CookiesFile: viper.GetString("cookies_file"),
		}
	}
	return &snapshot.Chrome{}
}
