package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ddtft/internal/logger"
)

var batchCmd = &cobra.Command{
	Use:   "batch [folder-path]",
	Short: "Parse every document in a folder",
	Long: `Parse all PDF and text documents in a folder in parallel.

Each file is processed as with the parse command. A progress line is printed
per file and a summary at the end. Files whose record needs a manual review
are counted as warnings; files that could not be read are counted as errors.

With -o the records of all files are written to a single JSON file, in the
order the files were found.

Optional environment variables:
  BATCH_WORKERS - Number of parallel workers (default: 12)
  DDTFT_LOOKUP_FILE - Reference dataset (default: embedded)`,
	Example: `  # Parse all documents in a folder
  ddtft batch ./documenti

  # Use 4 workers and save the records
  ddtft batch ./documenti --workers 4 -o records.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// BatchResult represents the result of processing a single file
type BatchResult struct {
	Filename string          `json:"file"`
	Status   string          `json:"status"` // "success", "warning", "error"
	Error    string          `json:"error,omitempty"`
	Output   *DocumentOutput `json:"record,omitempty"`
	Index    int             `json:"-"` // Original order index
}

// WorkerJob represents a file processing job
type WorkerJob struct {
	FilePath string
	Index    int
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("workers", 0, "Number of parallel workers (default: BATCH_WORKERS)")
	batchCmd.Flags().StringP("output", "o", "", "Write all records to this JSON file")
	batchCmd.Flags().Int("timeout", 30*60, "Overall timeout in seconds")
	batchCmd.Flags().Bool("verbose", false, "Show detailed processing information")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	folderPath := args[0]
	workers, _ := cmd.Flags().GetInt("workers")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = cfg.BatchWorkers
	}

	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("folder not found: %s", folderPath)
	}
	if !folderInfo.IsDir() {
		return fmt.Errorf("path is not a directory: %s", folderPath)
	}

	log.Info().
		Str("folder", folderPath).
		Int("workers", workers).
		Str("output", outputPath).
		Bool("verbose", verbose).
		Msg("Starting batch processing")

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                         ELABORAZIONE DOCUMENTI")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Cartella: %s\n", folderPath)
	fmt.Println()

	ctx, cancel := createParseContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	ds, err := loadDataset(cfg.LookupFile, log)
	if err != nil {
		return err
	}
	proc := newDocumentProcessor(ds, cfg.MaxFileBytes)

	files, err := findDocumentFiles(folderPath)
	if err != nil {
		return fmt.Errorf("failed to find documents: %w", err)
	}

	if len(files) == 0 {
		fmt.Println("Nessun documento trovato nella cartella.")
		return nil
	}

	fmt.Printf("Elaboro %d documenti con %d worker paralleli...\n", len(files), workers)
	fmt.Println()

	results := processFilesInParallel(ctx, files, proc, workers, log, verbose)

	fmt.Println()

	successCount, warningCount, errorCount := countResults(results)

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 RISULTATO")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Completati: %d\n", successCount)
	if warningCount > 0 {
		fmt.Printf("Da verificare: %d\n", warningCount)
	}
	if errorCount > 0 {
		fmt.Printf("Errori: %d\n", errorCount)
	}
	fmt.Println(strings.Repeat("=", 80))

	log.Info().
		Int("total", len(files)).
		Int("success", successCount).
		Int("warnings", warningCount).
		Int("errors", errorCount).
		Msg("Batch processing completed")

	if outputPath != "" {
		return writeJSON(results, outputPath, log)
	}
	return nil
}

// findDocumentFiles finds all PDF and text files in the specified folder, sorted by path
func findDocumentFiles(folderPath string) ([]string, error) {
	var files []string

	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && isDocumentFile(info.Name()) {
			files = append(files, path)
		}

		return nil
	})

	sort.Strings(files)
	return files, err
}

// processSingleFile processes a single file and returns the result
func processSingleFile(ctx context.Context, path string, proc *documentProcessor, log zerolog.Logger, verbose bool) BatchResult {
	result := BatchResult{
		Filename: filepath.Base(path),
		Status:   "error",
	}

	output, err := proc.process(ctx, path, "")
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Output = output
	result.Status = "success"
	if len(output.ReviewReasons) > 0 {
		result.Status = "warning"
	}

	if verbose {
		log.Info().
			Str("file", result.Filename).
			Str("type", string(output.Document.Type)).
			Str("number", output.Document.Number).
			Str("client", output.Document.ClientName).
			Str("total", output.Document.Total.StringFixed(2)).
			Strs("review", output.ReviewReasons).
			Msg("Document processed")
	}

	return result
}

// processFilesInParallel processes files using a worker pool pattern
func processFilesInParallel(ctx context.Context, files []string, proc *documentProcessor, numWorkers int, log zerolog.Logger, verbose bool) []BatchResult {
	jobs := make(chan WorkerJob, len(files))
	results := make([]BatchResult, len(files))

	var processedCount int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			wlog := logger.WithFields(map[string]interface{}{"component": "batch", "worker": workerID})

			for job := range jobs {
				wlog.Debug().
					Str("file", job.FilePath).
					Int("index", job.Index+1).
					Msg("Worker processing document")

				result := processSingleFile(ctx, job.FilePath, proc, wlog, verbose)
				result.Index = job.Index

				// Each worker writes only its own slot
				results[job.Index] = result

				mu.Lock()
				processedCount++
				fmt.Printf("[%d/%d] %s - %s", processedCount, len(files), result.Filename, getStatusEmoji(result.Status))
				switch {
				case result.Error != "":
					fmt.Printf(" (%s)", result.Error)
				case result.Output != nil:
					fmt.Printf(" (%s %s, €%s)", result.Output.Document.Type,
						result.Output.Document.Number, result.Output.Document.Total.StringFixed(2))
				}
				fmt.Println()
				mu.Unlock()
			}
		}(w)
	}

	for i, file := range files {
		jobs <- WorkerJob{
			FilePath: file,
			Index:    i,
		}
	}
	close(jobs)

	wg.Wait()
	log.Debug().Int("files", len(files)).Int("workers", numWorkers).Msg("All workers finished")

	return results
}

func countResults(results []BatchResult) (success, warning, failed int) {
	for _, result := range results {
		switch result.Status {
		case "success":
			success++
		case "warning":
			warning++
		case "error":
			failed++
		}
	}
	return success, warning, failed
}

// getStatusEmoji returns an emoji for the processing status
func getStatusEmoji(status string) string {
	switch status {
	case "success":
		return "✅"
	case "warning":
		return "⚠️"
	case "error":
		return "❌"
	default:
		return "❓"
	}
}
