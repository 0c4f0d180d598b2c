// Command datacheck loads every dataset the guide serves and reports what
// the server would skip: malformed records, duplicate ids within a file and
// ids shared between datasets. It exits non-zero when anything is wrong, so
// it can gate a data deploy.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	"github.com/visitgevgelija/guide-server/internal/logger"
)

func main() {
	dataPath := flag.String("data-path", os.Getenv("DATA_PATH"), "Directory holding the dataset JSON files")
	baseURL := flag.String("base-url", os.Getenv("DATA_BASE_URL"), "Base URL the dataset files are served from")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	var source catalog.Source
	switch {
	case *dataPath != "":
		source = catalog.NewDirSource(*dataPath)
	case *baseURL != "":
		source = catalog.NewHTTPSource(*baseURL, catalog.NewHTTPClient(*timeout))
	default:
		log.Fatal("one of -data-path or -base-url is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cat := catalog.New(catalog.DefaultManifest(), source, nil, logger.Discard().Logger)

	fmt.Printf("=== Dataset Check (%s) ===\n", source.Describe())
	fmt.Println()

	failed := false
	for _, ds := range cat.Manifest().Datasets {
		report, err := cat.Inspect(ctx, ds.Name)
		if err != nil {
			fmt.Printf("%-16s FAILED: %v\n", ds.Name, err)
			failed = true
			continue
		}

		premium := 0
		for _, l := range report.Listings {
			if l.IsPremium() {
				premium++
			}
		}
		fmt.Printf("%-16s %4d listings  %3d premium  %3d skipped\n",
			ds.Name, len(report.Listings), premium, len(report.Problems))

		for _, p := range report.Problems {
			if p.ID != "" {
				fmt.Printf("    [%d] %s: %s\n", p.Index, p.ID, p.Reason)
			} else {
				fmt.Printf("    [%d] %s\n", p.Index, p.Reason)
			}
			failed = true
		}
	}
	fmt.Println()

	collisions, err := cat.Collisions(ctx)
	if err != nil {
		fmt.Printf("Collision check FAILED: %v\n", err)
		os.Exit(1)
	}
	if len(collisions) > 0 {
		fmt.Println("Ids shared between datasets (favorites cannot tell them apart):")
		for _, c := range collisions {
			fmt.Printf("  %-30s %s\n", c.ID, strings.Join(c.Datasets, ", "))
		}
		fmt.Println()
		failed = true
	}

	if failed {
		fmt.Println("Result: problems found")
		os.Exit(1)
	}
	fmt.Println("Result: ok")
}
