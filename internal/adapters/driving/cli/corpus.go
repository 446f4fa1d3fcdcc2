package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
)

// fetchTimeout bounds a single corpus download.
const fetchTimeout = 60 * time.Second

var corpusSearchTopK int

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the regulatory corpus",
	Long: `The corpus holds the regulation passages cited in findings. Sources are
split into overlapping passages, embedded and stored locally.`,
}

var corpusIndexCmd = &cobra.Command{
	Use:   "index [file|url]...",
	Short: "Add or refresh corpus sources",
	Long: `Fetches each URL or reads each file, extracts its text and indexes it.
Re-indexing a source replaces its previous passages.

Examples:
  clausecheck corpus index https://www.legislation.gov.uk/ukpga/2006/46/contents
  clausecheck corpus index ./regulation/gdpr.html ./regulation/ca2006.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCorpusIndex,
}

var corpusSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusSearch,
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Args:  cobra.NoArgs,
	RunE:  runCorpusStats,
}

var corpusRemoveCmd = &cobra.Command{
	Use:   "remove [source]",
	Short: "Remove a source from the corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusRemove,
}

// httpClient fetches corpus URLs. Tests replace it.
var httpClient = &http.Client{Timeout: fetchTimeout}

func init() {
	corpusSearchCmd.Flags().IntVarP(&corpusSearchTopK, "top", "k", 5, "maximum number of passages")
	corpusCmd.AddCommand(corpusIndexCmd)
	corpusCmd.AddCommand(corpusSearchCmd)
	corpusCmd.AddCommand(corpusStatsCmd)
	corpusCmd.AddCommand(corpusRemoveCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusIndex(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	raws := make([]domain.RawDocument, 0, len(args))
	for _, arg := range args {
		raw, err := loadSource(cmd.Context(), arg)
		if err != nil {
			return err
		}
		cmd.Printf("Loaded %s (%d bytes)\n", raw.URI, len(raw.Content))
		raws = append(raws, *raw)
	}

	report, err := corpusService.Index(cmd.Context(), raws)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d source(s), %d passage(s)\n", report.Sources, report.Passages)
	for _, s := range report.Skipped {
		cmd.Println(styles.Warning.Render("Skipped " + s + ": no text extracted"))
	}
	return nil
}

// loadSource reads a local file or downloads a URL.
func loadSource(ctx context.Context, arg string) (*domain.RawDocument, error) {
	if u, err := url.Parse(arg); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return fetchURL(ctx, arg)
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return &domain.RawDocument{
		URI:      filepath.Clean(arg),
		MIMEType: normalisers.DetectMIME(arg),
		Content:  data,
	}, nil
}

func fetchURL(ctx context.Context, rawURL string) (*domain.RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", "clausecheck/"+version)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = normalisers.DetectMIME(req.URL.Path)
	}
	return &domain.RawDocument{URI: rawURL, MIMEType: mimeType, Content: data}, nil
}

func runCorpusSearch(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	citations, err := corpusService.Search(cmd.Context(), args[0], corpusSearchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(citations) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, c := range citations {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, c.SourceID, c.Score)
		cmd.Printf("      %s\n\n", domain.ShortenExcerpt(c.Excerpt, 200))
	}
	return nil
}

func runCorpusStats(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	stats, err := corpusService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Printf("Sources:  %d\n", stats.Sources)
	cmd.Printf("Passages: %d\n", stats.Passages)
	cmd.Printf("Vectors:  %d\n", stats.Vectors)
	if stats.EmbeddingModel != "" {
		cmd.Printf("Model:    %s\n", stats.EmbeddingModel)
	}
	return nil
}

func runCorpusRemove(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	n, err := corpusService.Remove(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", args[0], err)
	}
	cmd.Printf("Removed %d passage(s) from %s\n", n, args[0])
	return nil
}
