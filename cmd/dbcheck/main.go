package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"xcri-rankings/internal/config"
	"xcri-rankings/internal/models"
	"xcri-rankings/internal/repository"
	"xcri-rankings/internal/services"
	"xcri-rankings/pkg/database"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

const version = "2.0.0"

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "Overall time allowed for the checks")
	summary := flag.Bool("summary", false, "Also print the processing summary of live runs")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	opts := cfg.Logging.Options()
	opts.Output = os.Stderr
	logger := logging.New("xcri-dbcheck", version, opts)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	metricsCollector := metrics.NewCollector("xcri_dbcheck", prometheus.NewRegistry())

	db, err := database.NewPostgresDB(cfg.Database.Postgres(), logger, metricsCollector)
	if err != nil {
		logger.Error(ctx, "[DBCHECK_ERROR] Failed to connect to database", logging.Fields{
			"host": cfg.Database.Host,
		}, err)
		os.Exit(1)
	}
	defer db.Close()

	health := services.NewHealthService(repository.NewHealthRepository(db, logger, metricsCollector), version, logger, metricsCollector)
	meta := services.NewMetadataService(repository.NewMetadataRepository(db, logger, metricsCollector), logger, metricsCollector)

	status := health.Check(ctx)
	printTables(status)

	failed := status.Status != models.HealthHealthy

	latest, err := meta.LatestMetadata(ctx)
	if err != nil {
		logger.Error(ctx, "[DBCHECK_ERROR] Failed to load latest calculations", logging.Fields{}, err)
		failed = true
	} else {
		printLatest(latest)
	}

	if *summary {
		s, err := meta.ProcessingSummary(ctx)
		if err != nil {
			logger.Error(ctx, "[DBCHECK_ERROR] Failed to load processing summary", logging.Fields{}, err)
			failed = true
		} else {
			printSummary(s)
		}
	}

	if failed {
		fmt.Printf("\nRESULT: %s\n", strings.ToUpper(status.Status))
		os.Exit(1)
	}
	fmt.Println("\nRESULT: OK")
}

func printTables(status models.HealthStatus) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("DATABASE %s\n", strings.ToUpper(status.Status))
	fmt.Println(strings.Repeat("=", 80))

	tables := make([]string, 0, len(status.DatabaseTables))
	for table := range status.DatabaseTables {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		fmt.Printf("%-45s %12d\n", table, status.DatabaseTables[table])
	}
	for _, table := range repository.HealthTables {
		if _, ok := status.DatabaseTables[table]; !ok && status.DatabaseConnected {
			fmt.Printf("%-45s %12s\n", table, "unavailable")
		}
	}
}

func printLatest(runs []models.CalculationMetadata) {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("LATEST LIVE CALCULATIONS")
	fmt.Println(strings.Repeat("=", 80))

	if len(runs) == 0 {
		fmt.Println("No live calculations recorded")
		return
	}
	for _, run := range runs {
		athletes := "-"
		if run.TotalAthletes != nil {
			athletes = fmt.Sprint(*run.TotalAthletes)
		}
		fmt.Printf("season %d  division %-6d gender %s  %-10s athletes %-7s at %s\n",
			run.SeasonYear, run.DivisionCode, run.GenderCode, run.CalculationStatus,
			athletes, run.CalculatedAt.UTC().Format(time.RFC3339))
	}
}

func printSummary(s *models.ProcessingSummary) {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("PROCESSING SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Total Calculations: %d\n", s.TotalCalculations)
	fmt.Printf("Successful Runs:    %d\n", s.SuccessfulRuns)
	fmt.Printf("Failed Runs:        %d\n", s.FailedRuns)
	if s.AvgProcessingSeconds != nil {
		fmt.Printf("Avg Processing:     %.2fs\n", *s.AvgProcessingSeconds)
	}
	if s.LastCalculationAt != nil {
		fmt.Printf("Last Calculation:   %s\n", s.LastCalculationAt.UTC().Format(time.RFC3339))
	}
}
