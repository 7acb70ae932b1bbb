package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"crashsig/config"
	"crashsig/internal/adapter/cache"
	"crashsig/internal/adapter/fs"
	"crashsig/internal/adapter/store"
	"crashsig/internal/logging"
	"crashsig/internal/signature"
	"crashsig/internal/usecase"
)

func main() {
	libraryPath := flag.String("library", ".", "Path to indexed signature library")
	crashDir := flag.String("crashes", "", "Directory of crash JSON files")
	topK := flag.Int("k", 3, "Number of closest candidates per unmatched crash")
	flag.Parse()

	if *crashDir == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -library ./signatures -crashes ./crashes")
		fmt.Println("\nMeasures:")
		fmt.Println("  1. Library load time (index + parse cache)")
		fmt.Println("  2. Match throughput across all crashes")
		fmt.Println("  3. Closest-signature quality for unmatched crashes")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*libraryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	library, sigCache, err := loadLibrary(cfg, *libraryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading library: %v\n", err)
		os.Exit(1)
	}
	loadTime := time.Since(start)

	crashes, err := filepath.Glob(filepath.Join(*crashDir, "*.json"))
	if err != nil || len(crashes) == 0 {
		fmt.Fprintf(os.Stderr, "No crash files found in %s\n", *crashDir)
		os.Exit(1)
	}

	fmt.Println("SIGNATURE MATCHING BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Signatures: %d (loaded in %s)\n", len(library), loadTime.Round(time.Microsecond))
	fmt.Printf("Crashes:    %d\n", len(crashes))
	fmt.Printf("Workers:    %d\n", cfg.Match.Workers)
	fmt.Println()

	logger := logging.New("benchmark")
	matchUC := usecase.NewMatchUseCase(library, cfg.Match.Workers, logger)

	start = time.Now()
	results, err := matchUC.MatchAll(context.Background(), crashes, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Match error: %v\n", err)
		os.Exit(1)
	}
	matchTime := time.Since(start)

	closestUC := usecase.NewClosestUseCase(library, *topK, 0, logger)

	matched, failed := 0, 0
	var unmatched []string
	for _, r := range results {
		switch {
		case r.Error != "":
			failed++
		case len(r.Matches) > 0:
			matched++
		default:
			unmatched = append(unmatched, r.CrashPath)
		}
	}

	fmt.Printf("Unmatched crashes (closest %d):\n\n", *topK)
	totalRatio := 0.0
	ranked := 0
	start = time.Now()
	for _, path := range unmatched {
		crash, err := fs.LoadCrash(path)
		if err != nil {
			continue
		}
		candidates := closestUC.Closest(crash.Record)
		if len(candidates) == 0 {
			fmt.Printf("  %s: no in-scope candidates\n", shortPath(path))
			continue
		}

		best := candidates[0]
		totalRatio += best.Ratio
		ranked++

		rating := "FAR"
		if best.Ratio <= 0.2 {
			rating = "CLOSE"
		} else if best.Ratio <= 0.5 {
			rating = "NEAR"
		}
		fmt.Printf("  %s: [%s %d/%d] %s\n", shortPath(path), rating, best.Distance, best.Total, shortPath(best.Path))
	}
	closestTime := time.Since(start)

	hits, misses := sigCache.Stats()

	fmt.Println()
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("RESULTS:\n")
	fmt.Printf("  Matched:          %d\n", matched)
	fmt.Printf("  Unmatched:        %d\n", len(unmatched))
	fmt.Printf("  Failed to load:   %d\n", failed)
	fmt.Printf("  Match time:       %s (%.1f crashes/s)\n", matchTime.Round(time.Microsecond), float64(len(crashes))/matchTime.Seconds())
	fmt.Printf("  Closest time:     %s\n", closestTime.Round(time.Microsecond))
	fmt.Printf("  Parse cache:      %d hits, %d misses\n", hits, misses)
	if ranked > 0 {
		fmt.Printf("  Avg best ratio:   %.3f\n", totalRatio/float64(ranked))
	}
}

func loadLibrary(cfg *config.Config, dir string) ([]usecase.LibraryEntry, *cache.SignatureCache, error) {
	st, err := store.NewBoltStore(config.LibraryDBPath(dir))
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	sigCache, err := cache.NewSignatureCache(cfg.Library.CacheSize, signature.WithDiffWindow(cfg.Library.DiffWindow))
	if err != nil {
		return nil, nil, err
	}

	library, err := usecase.LoadLibrary(st, sigCache)
	if err != nil {
		return nil, nil, err
	}
	return library, sigCache, nil
}

func shortPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		return parts[len(parts)-1]
	}
	return path
}
