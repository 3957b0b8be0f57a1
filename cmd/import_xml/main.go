package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"tool2go/legacy"
	"tool2go/rental"
)

func main() {
	dbPath := flag.String("db", "tool2go.db", "SQLite database to create")
	dir := flag.String("dir", ".", "directory holding kunden.xml, kategorien.xml and buchungen.xml")
	weekRate := flag.Bool("week-rate", false, "price full weeks at the week rate")
	flag.Parse()

	// Clean up any existing database files
	fmt.Println("Cleaning up existing database files...")
	for _, file := range []string{*dbPath, *dbPath + "-shm", *dbPath + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}
	fmt.Println("Database cleanup complete.")

	fmt.Printf("Reading legacy XML files from %s...\n", *dir)
	snap, err := legacy.ReadDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading legacy files: %v\n", err)
		os.Exit(1)
	}
	res := legacy.Convert(snap, rental.Pricer{ApplyWeekRate: *weekRate})
	for _, w := range res.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}

	store, err := rental.OpenSQLite(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := res.Save(context.Background(), store); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing database: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Customers: %d, categories: %d, bookings: %d\n", len(res.Customers), len(res.Categories), len(res.Bookings))
	fmt.Printf("Warnings: %d\n", len(res.Warnings))

	if len(res.Categories) > 0 {
		fmt.Println("\nImported tools:")
		fmt.Printf("%-20s %-30s %-20s %s\n", "Category", "Tool", "Spec", "Units")
		fmt.Println(strings.Repeat("-", 80))
		for _, e := range rental.ByManufacturer(rental.NewCatalog(res.Categories).Entries()) {
			fmt.Printf("%-20s %-30s %-20s %d\n",
				truncateString(e.Category.Name, 20), truncateString(e.Type.Label(), 30), truncateString(e.Type.Spec, 20), e.Type.Capacity)
		}
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
