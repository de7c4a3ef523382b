package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ddtft/internal/ddtft"
	"ddtft/internal/logger"
	"ddtft/internal/lookup"
	"ddtft/internal/textsource"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a single DDT, fattura or nota di credito into JSON",
	Long: `Extract the text of a document and parse it into a structured record.

PDF files are read through their embedded text layer; any other file is read
as plain text (UTF-8, or Windows-1252 when the bytes are not valid UTF-8).
The document type is classified from the file name first, so names such as
DDV_4521_2025.pdf or FT_118_2025.pdf are preferred. Use --name to supply the
original name when the file was renamed.

The output is always JSON and includes diagnostics, field provenance and the
reasons the record may need a manual review.

Optional environment variables:
  DDTFT_LOOKUP_FILE - Reference dataset (default: embedded)
  DDTFT_MAX_FILE_BYTES - Maximum input size (default: 50MB)`,
	Example: `  # Parse a DDT to stdout
  ddtft parse DDV_4521_2025.pdf

  # Save the record to a file
  ddtft parse FT_118_2025.pdf -o fattura.json

  # Parse extracted text, classifying with the original file name
  ddtft parse export.txt --name NC_12_2025.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().String("name", "", "File name used for classification (default: the input file name)")
	parseCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("parse")

	outputPath, _ := cmd.Flags().GetString("output")
	nameHint, _ := cmd.Flags().GetString("name")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	path := args[0]

	log.Info().
		Str("file", path).
		Str("output", outputPath).
		Str("name", nameHint).
		Int("timeout", timeoutSecs).
		Msg("Starting document parsing")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := validateDocumentFile(path, cfg.MaxFileBytes, log); err != nil {
		return err
	}

	ctx, cancel := createParseContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	ds, err := loadDataset(cfg.LookupFile, log)
	if err != nil {
		return err
	}

	proc := newDocumentProcessor(ds, cfg.MaxFileBytes)
	output, err := proc.process(ctx, path, nameHint)
	if err != nil {
		return handleParseError(err, log)
	}

	log.Info().
		Str("type", string(output.Document.Type)).
		Str("number", output.Document.Number).
		Str("client", output.Document.ClientName).
		Str("total", output.Document.Total.StringFixed(2)).
		Int("diagnostics", len(output.Diagnostics)).
		Dur("duration", output.Metadata.ProcessingDuration).
		Msg("Document parsing completed")

	return writeJSON(output, outputPath, log)
}

// documentProcessor couples a text source per file type with the parser
type documentProcessor struct {
	ds       *lookup.Dataset
	parser   *ddtft.Parser
	maxBytes int64
}

func newDocumentProcessor(ds *lookup.Dataset, maxBytes int64) *documentProcessor {
	return &documentProcessor{
		ds:       ds,
		parser:   ddtft.NewParser(ddtft.WithLookup(ds)),
		maxBytes: maxBytes,
	}
}

// process extracts and parses one file. nameHint overrides the file name used
// for classification.
func (p *documentProcessor) process(ctx context.Context, path, nameHint string) (*DocumentOutput, error) {
	startTime := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	src := textsource.ForFile(path, textsource.WithMaxBytes(p.maxBytes))
	extracted, err := src.ExtractWithMetadata(ctx, f)
	if err != nil {
		return nil, err
	}

	name := nameHint
	if name == "" {
		name = filepath.Base(path)
	}
	rec, err := p.parser.Parse(extracted.Text, name)
	if err != nil {
		return nil, err
	}

	return convertToDocumentOutput(rec, p.ds, ProcessingMetadata{
		FileName:           filepath.Base(path),
		FileSize:           info.Size(),
		PageCount:          extracted.PageCount,
		TextSource:         extracted.Source,
		DatasetVersion:     p.ds.Version,
		ProcessedAt:        time.Now(),
		ProcessingDuration: time.Since(startTime),
	}), nil
}

// loadDataset loads the configured reference dataset, or the embedded one
func loadDataset(path string, log zerolog.Logger) (*lookup.Dataset, error) {
	ds, err := lookup.LoadOrDefault(path)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", path).
			Msg("Failed to load lookup dataset")
		return nil, fmt.Errorf("failed to load lookup dataset: %w", err)
	}
	log.Debug().
		Str("version", ds.Version).
		Int("clients", len(ds.Clients)).
		Msg("Lookup dataset loaded")
	return ds, nil
}

// validateDocumentFile validates the input file before extraction
func validateDocumentFile(path string, maxBytes int64, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", path).
				Msg("Document file not found")
			return nil, fmt.Errorf("document file not found: %s", path)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", path).
				Msg("Permission denied accessing document file")
			return nil, fmt.Errorf("permission denied accessing document file: %s", path)
		}
		return nil, fmt.Errorf("error accessing document file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", path).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}

	if !isDocumentFile(path) {
		log.Warn().
			Str("file", path).
			Msg("File has neither .pdf nor .txt extension, reading it as plain text")
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", path).
			Msg("Document file is empty")
		return nil, fmt.Errorf("document file is empty: %s", path)
	}

	if fileInfo.Size() > maxBytes {
		log.Error().
			Str("file", path).
			Int64("size", fileInfo.Size()).
			Int64("max_size", maxBytes).
			Msg("Document file exceeds maximum size limit")
		return nil, fmt.Errorf("document file too large (%d bytes). Maximum size is %d bytes",
			fileInfo.Size(), maxBytes)
	}

	return fileInfo, nil
}

func isDocumentFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pdf" || ext == ".txt"
}

// createParseContext creates a context with timeout and signal handling
func createParseContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling processing")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// handleParseError provides user-friendly error messages for parsing failures
func handleParseError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Document parsing failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("document processing timed out. Try increasing --timeout")
	case errors.Is(err, textsource.ErrCanceled), errors.Is(err, context.Canceled):
		return fmt.Errorf("document processing was canceled")
	case errors.Is(err, textsource.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file. Please check the file integrity")
	case errors.Is(err, textsource.ErrEmptyDocument):
		return fmt.Errorf("the document has no text layer. Scanned PDFs must be run through OCR first")
	case errors.Is(err, textsource.ErrFileTooLarge):
		return fmt.Errorf("document file is too large. Raise DDTFT_MAX_FILE_BYTES or split the file")
	case errors.Is(err, ddtft.ErrEmptyText):
		return fmt.Errorf("the document text is empty")
	default:
		return fmt.Errorf("document parsing failed: %w", err)
	}
}
