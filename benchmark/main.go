// Package main provides a performance benchmarking tool for the kpiboard CLI.
// It imports a seed file into a scratch record store, then measures execution
// times of the read paths with and without the roster cache, running each
// command multiple times, treating the first successful cached run as cold and
// averaging the rest as warm, and writes CSV output for analysis.
//
// Prerequisites:
// - kpiboard binary installed and available in PATH
// - A seed file with operators and templates (see integration/testdata/seed.yaml)
//
// Usage: go run benchmark/main.go [seed-file] [person]
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	SeedFile    string
	Person      string
	Month       string
	Home        string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
}

// benchmarkCommand is one CLI invocation under test.
type benchmarkCommand struct {
	Name string
	Args []string
}

func main() {
	if len(os.Args) != 3 {
		fmt.Printf("Usage: %s [seed-file] [person]\n", os.Args[0])
		os.Exit(1)
	}

	home, err := os.MkdirTemp("", "kpiboard-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create scratch home: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(home) }()

	config := BenchmarkConfig{
		SeedFile:    os.Args[1],
		Person:      os.Args[2],
		Month:       time.Now().AddDate(0, -1, 0).Format("2006-01"),
		Home:        home,
		Timeout:     time.Minute,
		NoCacheRuns: 5,
		CacheRuns:   6,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Importing seed into %s...\n", filepath.Join(home, ".kpiboard.db"))
	if output, err := kpiboard(config, "import", config.SeedFile).CombinedOutput(); err != nil {
		fmt.Printf("Failed to import seed: %v\nOutput: %s\n", err, string(output))
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that kpiboard binary and the seed file exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("kpiboard"); err != nil {
		return fmt.Errorf("kpiboard binary not found in PATH")
	}
	if _, err := os.Stat(config.SeedFile); os.IsNotExist(err) {
		return fmt.Errorf("seed file not found at %s", config.SeedFile)
	}
	return nil
}

// kpiboard builds a CLI invocation that keeps all state in the scratch home.
func kpiboard(config BenchmarkConfig, args ...string) *exec.Cmd {
	cmd := exec.Command("kpiboard", args...)
	cmd.Env = append(os.Environ(), "HOME="+config.Home)
	return cmd
}

// runBenchmarks executes all benchmark commands
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	commands := []benchmarkCommand{
		{Name: "operators", Args: []string{"operators", "--output", "json"}},
		{Name: "score", Args: []string{"score", config.Person, "--month", config.Month, "--output", "json"}},
		{Name: "history", Args: []string{"history", config.Person, "--output", "json"}},
	}

	fmt.Printf("Starting benchmark: %d commands, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(commands), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	results := make([]BenchmarkResult, 0, len(commands))
	for _, c := range commands {
		results = append(results, runBenchmarkSuite(config, c))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, c benchmarkCommand) BenchmarkResult {
	fmt.Printf("Running %s\n", c.Name)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, c, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs, starting from an empty roster cache
	if output, err := kpiboard(config, "sync", "--output", "json").CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to reset roster cache: %v\nOutput: %s\n", err, string(output))
	}
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Command:     c.Name,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a kpiboard command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, c benchmarkCommand, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, c.Args...)
	args = append(args, "--cache-backend", cacheBackend)

	var times []float64
	for range numRuns {
		start := time.Now()
		cmd := kpiboard(config, args...)

		done := make(chan error, 1)
		go func() {
			_, err := cmd.Output()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return coldTime, warmTimes
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("kpiboard_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-10s: No-cache: %s, Cold: %s, Warm: %s\n", result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
