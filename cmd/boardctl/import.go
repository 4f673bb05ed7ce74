package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"vectorboard/internal/config"
	"vectorboard/internal/editor"
	"vectorboard/internal/figma"
)

var (
	figmaURL    string
	accessToken string
	importOut   string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Convert designs from other tools into board documents",
}

var importFigmaCmd = &cobra.Command{
	Use:   "figma [export.json]",
	Short: "Convert a Figma file into board JSON",
	Long: `Reads a Figma JSON export (REST or native) from a file, or downloads one
with --url and --token, and writes the equivalent board document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && figmaURL == "" {
			return fmt.Errorf("either a file or --url is required")
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		src := figmaSource{URL: figmaURL, Token: accessToken}
		if len(args) == 1 {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read figma export: %w", err)
			}
			src.Data = data
		}
		if src.Token == "" {
			src.Token = os.Getenv("FIGMA_TOKEN")
		}

		cyan.Fprintln(os.Stderr, "Importing Figma design...")
		doc, n, err := importFigma(ctx, loadConfig(), src)
		if err != nil {
			return err
		}

		if importOut == "" || importOut == "-" {
			fmt.Println(string(doc))
		} else if err := os.WriteFile(importOut, doc, 0644); err != nil {
			return fmt.Errorf("write %s: %w", importOut, err)
		}
		green.Fprintf(os.Stderr, "✓ Imported %d top-level node(s)\n", n)
		return nil
	},
}

func init() {
	importFigmaCmd.Flags().StringVarP(&figmaURL, "url", "u", "", "Figma file URL or file key")
	importFigmaCmd.Flags().StringVarP(&accessToken, "token", "t", "", "Figma personal access token (default $FIGMA_TOKEN)")
	importFigmaCmd.Flags().StringVarP(&importOut, "output", "o", "", "Output document file (default stdout)")
	importCmd.AddCommand(importFigmaCmd)
	rootCmd.AddCommand(importCmd)
}

// figmaSource is either a payload already in hand or a file to download.
type figmaSource struct {
	Data  []byte
	URL   string
	Token string
}

// importFigma runs a Figma import on a scratch board and returns the board
// as a document with the number of top-level nodes imported.
func importFigma(ctx context.Context, cfg config.Config, src figmaSource) ([]byte, int, error) {
	ed := editor.New(ctx, editor.Options{
		Logger: &cliLogger{},
		NewFetcher: func(token string) editor.Fetcher {
			return figma.NewClient(token,
				figma.WithBaseURL(cfg.Figma.APIBaseURL),
				figma.WithHTTPClient(&http.Client{Timeout: cfg.Figma.Timeout}),
			)
		},
	})
	defer ed.Close()

	var n int
	var err error
	if src.Data != nil {
		n, err = ed.ImportFigmaJSON(src.Data)
	} else {
		n, err = ed.ImportFigmaAPI(ctx, src.URL, src.Token)
	}
	if err != nil {
		return nil, 0, err
	}
	doc, err := ed.ExportJSON()
	if err != nil {
		return nil, 0, err
	}
	return doc, n, nil
}
