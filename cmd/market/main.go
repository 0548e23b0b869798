package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/cryptodash/market/internal/api"
	"github.com/cryptodash/market/internal/coingecko"
	"github.com/cryptodash/market/internal/config"
	"github.com/cryptodash/market/internal/database"
	"github.com/cryptodash/market/internal/export"
	"github.com/cryptodash/market/internal/marketdata"
	"github.com/cryptodash/market/internal/notify"
	"github.com/cryptodash/market/internal/portfolio"
	"github.com/cryptodash/market/internal/quote"
	"github.com/cryptodash/market/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	app := &cli.App{
		Name:  "market",
		Usage: "crypto market data and portfolio service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API with background workers",
				Action: runServe,
			},
			{
				Name:  "export",
				Usage: "write a one-off market and portfolio statement",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "XLSX output path (overrides EXPORT_XLSX_PATH)",
					},
					&cli.BoolFlag{
						Name:  "sheets",
						Usage: "write to Google Sheets instead of a local XLSX file",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "number of top assets in the market sheet",
						Value: 50,
					},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type services struct {
	pool     *pgxpool.Pool
	markets  *marketdata.Service
	holdings *portfolio.Service
	quotes   *quote.Service
}

func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	client := coingecko.NewClient(cfg.CoinGeckoURL, notify.SlogNotifier{})
	markets := marketdata.NewService(client, cfg.CacheFreshness)

	quotes := quote.NewService(markets, markets, quote.NewPgRepository(pool),
		cfg.QuoteSnapshotLimit, cfg.QuoteStaleThreshold)

	holdings := portfolio.NewService(portfolio.NewPgHoldingRepository(pool), quotes)

	return &services{
		pool:     pool,
		markets:  markets,
		holdings: holdings,
		quotes:   quotes,
	}, nil
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	svcs, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svcs.pool.Close()

	refresh := worker.NewRefreshWorker(svcs.quotes, cfg.QuoteRefreshInterval)
	go refresh.Run(ctx)

	janitor := worker.NewJanitor(svcs.markets, cfg.CacheSweepInterval)
	go janitor.Run(ctx)

	var exports *export.Service
	switch {
	case cfg.AdminAPIKey == "":
		slog.Warn("ADMIN_API_KEY not set, export endpoint disabled")
	case cfg.SpreadsheetID != "" && cfg.GoogleCredentialsJSON != "":
		writer, err := export.NewSheetsWriter(ctx, cfg.SpreadsheetID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return fmt.Errorf("creating sheets writer: %w", err)
		}
		exports = export.NewService(svcs.markets, svcs.holdings, writer, 50)
	default:
		exports = export.NewService(svcs.markets, svcs.holdings,
			export.NewXLSXWriter(cfg.ExportXLSXPath), 50)
	}

	srv := api.NewServer(cfg.HTTPPort, svcs.markets, svcs.holdings, exports, cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runExport(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	svcs, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svcs.pool.Close()

	var writer export.SheetWriter
	if c.Bool("sheets") {
		if cfg.SpreadsheetID == "" || cfg.GoogleCredentialsJSON == "" {
			return fmt.Errorf("SPREADSHEET_ID and GOOGLE_CREDENTIALS_JSON are required for --sheets")
		}
		writer, err = export.NewSheetsWriter(ctx, cfg.SpreadsheetID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return fmt.Errorf("creating sheets writer: %w", err)
		}
	} else {
		path := cfg.ExportXLSXPath
		if out := c.String("out"); out != "" {
			path = out
		}
		writer = export.NewXLSXWriter(path)
	}

	exports := export.NewService(svcs.markets, svcs.holdings, writer, c.Int("limit"))
	if err := exports.Export(ctx); err != nil {
		return fmt.Errorf("exporting statement: %w", err)
	}

	log.Println("Export complete")
	return nil
}
