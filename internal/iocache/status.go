package iocache

import (
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/kpiboard/schema"
)

// PrintCacheStatus prints roster cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Roster Cache Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Last Entry: %s\n", status.LastEntryTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Entry: %s\n", status.OldestEntryTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintRecordStatus prints record store status information.
func PrintRecordStatus(status schema.RecordStatus) {
	fmt.Printf("Record Store Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Schema Version: %d\n", status.SchemaVersion)
	fmt.Printf("Operators: %d\n", status.Operators)
	fmt.Printf("Template Items: %d\n", status.TemplateItems)
	fmt.Printf("History Records: %d\n", status.HistoryRecords)
	if status.HistoryRecords > 0 {
		fmt.Printf("Last Saved: %s\n", status.LastSavedTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}
