package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	bankapp "osi-dues/internal/bank/application"
	"osi-dues/internal/bank/infrastructure/csvfile"
	"osi-dues/internal/config"
	"osi-dues/internal/events"
	ledgerapp "osi-dues/internal/ledger/application"
	ledger "osi-dues/internal/ledger/domain"
	"osi-dues/internal/ledger/infrastructure/memory"
	ledgerrepo "osi-dues/internal/ledger/infrastructure/postgres"
	"osi-dues/internal/ledger/infrastructure/xlsx"
	ledgerinterfaces "osi-dues/internal/ledger/interfaces"
	"osi-dues/internal/observability/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type options struct {
	configPath  string
	ledgerPath  string
	bankPath    string
	units       int
	reportDir   string
	metricsFile string
	saveRetries int
	debug       bool
	dryRun      bool
}

func main() {
	opts := parseFlags()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	applyFlags(&cfg, opts)

	if err := run(context.Background(), cfg, opts, logger); err != nil {
		logger.Fatalf("reconciliation failed: %v", err)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", os.Getenv("OSI_LAYOUT_CONFIG"), "YAML layout and run configuration")
	flag.StringVar(&opts.ledgerPath, "ledger", "", "ledger workbook (.xlsx) updated in place")
	flag.StringVar(&opts.bankPath, "bank", "", "bank extract (.xlsx or .csv)")
	flag.IntVar(&opts.units, "units", -1, "size of the unit reference set 1..N; 0 reads it from the roster")
	flag.StringVar(&opts.reportDir, "report-dir", "", "directory for PDF and XLSX run reports")
	flag.StringVar(&opts.metricsFile, "metrics-file", "", "node-exporter textfile for run metrics")
	flag.IntVar(&opts.saveRetries, "save-retries", -1, "save attempts after a permission error")
	flag.BoolVar(&opts.debug, "debug", false, "log every ledger cell read and write")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "allocate on an in-memory copy and leave the ledger untouched")
	flag.Parse()
	if opts.ledgerPath == "" || opts.bankPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	return opts
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.units >= 0 {
		cfg.Units = opts.units
	}
	if opts.reportDir != "" {
		cfg.ReportDir = opts.reportDir
	}
	if opts.metricsFile != "" {
		cfg.MetricsFile = opts.metricsFile
	}
	if opts.saveRetries >= 0 {
		cfg.SaveRetries = opts.saveRetries
	}
	if opts.debug {
		cfg.Debug = true
	}
}

func run(ctx context.Context, cfg config.Config, opts options, logger *log.Logger) error {
	sink := events.NewLogSink(logger, cfg.Debug)
	runMetrics := metrics.New()
	manager := xlsx.NewManager(logger, sink)

	extract, err := readExtract(opts.bankPath, cfg)
	if err != nil {
		return fmt.Errorf("bank extract: %w", err)
	}

	workbook, err := manager.Load(opts.ledgerPath)
	if err != nil {
		return err
	}
	defer manager.Close(workbook)

	var doc ledger.Document = workbook
	if opts.dryRun {
		copyDoc, err := memory.CopyFrom(workbook)
		if err != nil {
			return fmt.Errorf("dry run copy: %w", err)
		}
		doc = copyDoc
		logger.Printf("dry run: ledger=%s will not be saved", opts.ledgerPath)
	}

	service, err := ledgerapp.NewReconciliationService(
		cfg.Ledger,
		logger,
		sink,
		runMetrics,
		ledgerinterfaces.NewLoggingPublisher(logger),
		ledgerapp.SystemClock{},
	)
	if err != nil {
		return err
	}

	report, runErr := service.Run(ctx, doc, extract, ledgerapp.RunOptions{Units: cfg.Units, Debug: cfg.Debug})

	var saveErr error
	if runErr == nil && !opts.dryRun && report.Writes > 0 {
		saveErr = saveWithRetry(manager, workbook, cfg, runMetrics, logger)
	}

	if cfg.ReportDir != "" {
		files, err := ledgerinterfaces.WriteReports(cfg.ReportDir, report, cfg.PDFFont)
		if err != nil {
			logger.Printf("report export error: %v", err)
		} else {
			logger.Printf("report written: pdf=%s xlsx=%s", files.PDF, files.XLSX)
		}
	}

	if cfg.DatabaseURL != "" {
		if err := persistRun(ctx, cfg.DatabaseURL, report, opts); err != nil {
			logger.Printf("run history error: %v", err)
		}
	}

	if cfg.MetricsFile != "" {
		if err := runMetrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Printf("metrics textfile error: %v", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if saveErr != nil {
		return saveErr
	}
	if report.Aborted {
		return fmt.Errorf("run aborted: %s", report.AbortReason)
	}
	return nil
}

func readExtract(path string, cfg config.Config) (bankapp.Extract, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		src, err := csvfile.Open(path, csvfile.Options{Encoding: cfg.CSV.Encoding, Comma: cfg.CSVComma()})
		if err != nil {
			return bankapp.Extract{}, err
		}
		layout := cfg.Extract
		layout.Sheet = csvfile.SheetName
		return bankapp.ReadExtract(src, layout)
	}
	doc, err := xlsx.OpenFile(path)
	if err != nil {
		return bankapp.Extract{}, err
	}
	defer doc.File().Close()
	return bankapp.ReadExtract(doc, cfg.Extract)
}

// saveWithRetry keeps the mutated workbook in memory and retries while the
// file is locked by another program.
func saveWithRetry(manager *xlsx.Manager, workbook *xlsx.Document, cfg config.Config, m *metrics.Metrics, logger *log.Logger) error {
	var err error
	for attempt := 0; attempt <= cfg.SaveRetries; attempt++ {
		err = manager.Save(workbook)
		denied := errors.Is(err, ledger.ErrSavePermissionDenied)
		m.ObserveSave(err, denied)
		if err == nil || !denied {
			return err
		}
		if attempt < cfg.SaveRetries {
			logger.Printf("ledger save: attempt=%d denied, close the workbook in other programs; retry in %s", attempt+1, cfg.SaveRetryDelay)
			time.Sleep(cfg.SaveRetryDelay)
		}
	}
	return err
}

func persistRun(ctx context.Context, dsn string, report *ledgerapp.Report, opts options) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	repo := ledgerrepo.NewRunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	return repo.SaveRun(ctx, report, opts.ledgerPath, opts.bankPath)
}
