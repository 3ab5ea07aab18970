package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	TotalErrors        int
	DonationsCreated   int
	OrdersCreated      int
	GatewayFailures    int
	Settlements        int
	DuplicateCallbacks int
	InvalidSignatures  int
	DeliveriesDone     int
	Releases           int
	ReleasesRejected   int
	DonationActivity   map[string]int
	ErrorPatterns      map[string]int
}

var (
	donationRegex = regexp.MustCompile(`donation ([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)
	uuidRegex     = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
)

func main() {
	logDir := flag.String("dir", "./logs", "log directory")
	day := flag.String("date", time.Now().Format("2006-01-02"), "log date (YYYY-MM-DD)")
	flag.Parse()

	stats := &LogStats{
		DonationActivity: make(map[string]int),
		ErrorPatterns:    make(map[string]int),
	}

	// Analyze error logs
	analyzeErrorLogs(filepath.Join(*logDir, fmt.Sprintf("error-%s.log", *day)), stats)

	// Analyze info logs
	analyzeInfoLogs(filepath.Join(*logDir, fmt.Sprintf("info-%s.log", *day)), stats)

	printReport(*day, stats)
}

func analyzeErrorLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		stats.TotalErrors++

		switch {
		case strings.Contains(line, "Invalid payment signature"):
			stats.InvalidSignatures++
			extractDonationActivity(line, stats)
		case strings.Contains(line, "Gateway order creation failed"):
			stats.GatewayFailures++
			extractDonationActivity(line, stats)
		case strings.Contains(line, "Release rejected"):
			stats.ReleasesRejected++
			extractDonationActivity(line, stats)
		}

		extractErrorPattern(line, stats)
	}
}

func analyzeInfoLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.Contains(line, "Created donation"):
			stats.DonationsCreated++
		case strings.Contains(line, "Created gateway order"):
			stats.OrdersCreated++
		case strings.Contains(line, "Settled payment"):
			stats.Settlements++
		case strings.Contains(line, "Duplicate settlement callback"),
			strings.Contains(line, "Concurrent settlement"):
			stats.DuplicateCallbacks++
		case strings.Contains(line, "Delivery confirmed"):
			stats.DeliveriesDone++
		case strings.Contains(line, "Released escrow"):
			stats.Releases++
		default:
			continue
		}
		extractDonationActivity(line, stats)
	}
}

func extractDonationActivity(line string, stats *LogStats) {
	if m := donationRegex.FindStringSubmatch(line); m != nil {
		stats.DonationActivity[m[1]]++
	}
}

// extractErrorPattern groups error lines by message with ids removed.
func extractErrorPattern(line string, stats *LogStats) {
	parts := strings.SplitN(line, ": ", 3)
	if len(parts) < 3 {
		return
	}
	msg := uuidRegex.ReplaceAllString(parts[2], "<id>")
	if i := strings.Index(msg, ": "); i > 0 {
		msg = msg[:i]
	}
	stats.ErrorPatterns[strings.TrimSpace(msg)]++
}

func printReport(day string, stats *LogStats) {
	fmt.Println("\n=== Escrow Log Report ===")
	fmt.Println("Log date:", day)
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n1. Payments:")
	fmt.Printf("   Donations Created: %d\n", stats.DonationsCreated)
	fmt.Printf("   Gateway Orders Created: %d\n", stats.OrdersCreated)
	fmt.Printf("   Gateway Failures: %d\n", stats.GatewayFailures)
	fmt.Printf("   Settlements: %d\n", stats.Settlements)
	fmt.Printf("   Duplicate Callbacks: %d\n", stats.DuplicateCallbacks)

	fmt.Println("\n2. Security Incidents:")
	fmt.Printf("   Invalid Signatures: %d\n", stats.InvalidSignatures)

	fmt.Println("\n3. Escrow Releases:")
	fmt.Printf("   Deliveries Confirmed: %d\n", stats.DeliveriesDone)
	fmt.Printf("   Releases: %d\n", stats.Releases)
	fmt.Printf("   Rejected Releases: %d\n", stats.ReleasesRejected)

	fmt.Println("\n4. Error Statistics:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)

	fmt.Println("\n5. Most Active Donations:")
	printTop(stats.DonationActivity, 5, "events")

	fmt.Println("\n6. Most Common Errors:")
	printTop(stats.ErrorPatterns, 5, "occurrences")
}

func printTop(counts map[string]int, limit int, unit string) {
	type entry struct {
		key   string
		count int
	}

	var entries []entry
	for k, c := range counts {
		entries = append(entries, entry{k, c})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].key < entries[j].key
		}
		return entries[i].count > entries[j].count
	})

	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d %s\n", e.key, e.count, unit)
	}
}
