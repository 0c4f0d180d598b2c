// Command dbinspect prints a summary of the device store: how many devices
// keep favorites, the most favorited listings and the language split.
package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/visitgevgelija/guide-server/internal/store"
)

const devicePrefix = "device:"

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.guide-server/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Device Store Inspection ===")
	fmt.Println()

	devices := make(map[string]bool)
	favoriteCounts := make(map[string]int)
	languages := make(map[string]int)
	viewModes := make(map[string]int)
	devicesWithFavorites := 0
	malformed := 0

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(devicePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// device:<id>:<name>
			device, name, ok := strings.Cut(strings.TrimPrefix(key, devicePrefix), ":")
			if !ok {
				continue
			}
			devices[device] = true

			err := item.Value(func(val []byte) error {
				switch name {
				case store.KeyFavoriteItems:
					var ids []string
					if err := json.Unmarshal(val, &ids); err != nil {
						malformed++
						return nil
					}
					if len(ids) > 0 {
						devicesWithFavorites++
					}
					for _, id := range ids {
						favoriteCounts[id]++
					}
				case store.KeyAppLanguage:
					languages[decodeString(val)]++
				case store.KeyMobileViewMode:
					viewModes[decodeString(val)]++
				}
				return nil
			})
			if err != nil {
				log.Printf("Error reading %s: %v", key, err)
			}
		}
		return nil
	})

	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	type ranked struct {
		id    string
		count int
	}
	top := make([]ranked, 0, len(favoriteCounts))
	for id, n := range favoriteCounts {
		top = append(top, ranked{id, n})
	}
	slices.SortFunc(top, func(a, b ranked) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})

	if len(top) > 0 {
		fmt.Println("Most favorited listings:")
		for i, r := range top {
			if i == 10 {
				fmt.Printf("  ... and %d more\n", len(top)-10)
				break
			}
			fmt.Printf("  %-30s %d\n", r.id, r.count)
		}
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Devices: %d\n", len(devices))
	fmt.Printf("Devices with favorites: %d\n", devicesWithFavorites)
	fmt.Printf("Distinct favorited listings: %d\n", len(favoriteCounts))
	if malformed > 0 {
		fmt.Printf("Malformed favorites values: %d\n", malformed)
	}
	printSplit("Languages", languages)
	printSplit("View modes", viewModes)
}

// decodeString accepts both JSON strings and bare values written by older clients.
func decodeString(val []byte) string {
	var s string
	if err := json.Unmarshal(val, &s); err != nil {
		return string(val)
	}
	return s
}

func printSplit(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	fmt.Printf("%s: %s\n", title, strings.Join(parts, " "))
}
