package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"
	"github.com/urfave/cli/v3"

	"github.com/gosom/contact-extractor/browser"
	"github.com/gosom/contact-extractor/config"
	"github.com/gosom/contact-extractor/extract"
	"github.com/gosom/contact-extractor/logging"
	"github.com/gosom/contact-extractor/web"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "contact-extractor",
		Usage: "find contact email addresses on websites",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "concurrency", Value: 4, Usage: "seeds extracted in parallel", Sources: cli.EnvVars("CONCURRENCY")},
			&cli.IntFlag{Name: "link-limit", Value: 15, Usage: "same-host links expanded per seed", Sources: cli.EnvVars("LINK_LIMIT")},
			&cli.DurationFlag{Name: "http-timeout", Usage: "per-request HTTP timeout", Sources: cli.EnvVars("HTTP_TIMEOUT")},
			&cli.IntFlag{Name: "max-retries", Value: 1, Usage: "HTTP retries per page", Sources: cli.EnvVars("MAX_RETRIES")},
			&cli.FloatFlag{Name: "rate-limit", Usage: "max HTTP requests per second, 0 for unlimited", Sources: cli.EnvVars("RATE_LIMIT")},
			&cli.IntFlag{Name: "rate-burst", Usage: "HTTP request burst", Sources: cli.EnvVars("RATE_BURST")},
			&cli.StringFlag{Name: "render-backend", Value: browser.BackendPlaywright, Usage: "playwright, chromedp or none", Sources: cli.EnvVars("RENDER_BACKEND")},
			&cli.DurationFlag{Name: "settle", Usage: "wait after page load before scrolling", Sources: cli.EnvVars("RENDER_SETTLE")},
			&cli.DurationFlag{Name: "nav-timeout", Usage: "browser navigation timeout", Sources: cli.EnvVars("RENDER_NAV_TIMEOUT")},
			&cli.BoolFlag{Name: "headful", Usage: "show the browser window", Sources: cli.EnvVars("RENDER_HEADFUL")},
			&cli.StringFlag{Name: "log-level", Value: "info", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.StringFlag{Name: "log-format", Usage: "console or json, auto-detected when empty", Sources: cli.EnvVars("LOG_FORMAT")},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: ":8080", Sources: cli.EnvVars("ADDR")},
				},
				Action: serve,
			},
			{
				Name:      "extract",
				Usage:     "extract addresses from the given URLs and print them",
				ArgsUsage: "URL [URL...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Value: string(web.FilterValid), Usage: "valid, invalid or all"},
				},
				Action: extractCmd,
			},
		},
	}
}

func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg := config.Config{
		Addr:              cmd.String("addr"),
		Concurrency:       cmd.Int("concurrency"),
		LinkLimit:         cmd.Int("link-limit"),
		HTTPTimeout:       cmd.Duration("http-timeout"),
		MaxRetries:        cmd.Int("max-retries"),
		RateLimit:         cmd.Float("rate-limit"),
		RateBurst:         cmd.Int("rate-burst"),
		RenderBackend:     cmd.String("render-backend"),
		SettleInterval:    cmd.Duration("settle"),
		NavigationTimeout: cmd.Duration("nav-timeout"),
		Headless:          !cmd.Bool("headful"),
		LogLevel:          cmd.String("log-level"),
		LogFormat:         cmd.String("log-format"),
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	logging.Init(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	return cfg, nil
}

// pipeline owns the browser backend backing a Service.
type pipeline struct {
	svc     *web.Service
	backend browser.Backend
}

func (p *pipeline) Close() error {
	if p.backend == nil {
		return nil
	}

	return p.backend.Close()
}

func buildPipeline(cfg config.Config) (*pipeline, error) {
	backend, err := browser.Open(cfg.RenderBackend, browser.Options{
		Headless:          cfg.Headless,
		NavigationTimeout: cfg.NavigationTimeout,
	})
	if err != nil {
		return nil, err
	}

	fetcher := extract.NewHTTPFetcher(extract.HTTPFetcherOptions{
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
		RateLimit:  cfg.RateLimit,
		Burst:      cfg.RateBurst,
	})

	var renderer extract.Renderer
	if backend != nil {
		renderer = backend
	}

	orch := extract.NewOrchestrator(
		extract.NewStaticExtractor(fetcher),
		extract.NewRenderedExtractor(renderer, cfg.SettleInterval),
		extract.NewLinkCrawler(fetcher),
		cfg.LinkLimit,
	)

	svc := web.NewService(
		extract.NewFanOut(orch, cfg.Concurrency),
		extract.NewClassifier(nil),
		web.NewResponseCache(),
	)

	return &pipeline{svc: svc, backend: backend}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	logging.Get().Info().
		Int("concurrency", cfg.Concurrency).
		Int("link_limit", cfg.LinkLimit).
		Str("render_backend", cfg.RenderBackend).
		Msg("starting")

	return web.New(p.svc, cfg.Addr).Start(ctx)
}

func extractCmd(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return errors.New("at least one URL is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, _ = logging.WithRequest(ctx)

	resp, err := p.svc.Extract(ctx, web.ExtractRequest{
		URLs:   cmd.Args().Slice(),
		Filter: web.FilterParam(cmd.String("filter")),
	})
	if err != nil {
		return err
	}

	printTable(os.Stdout, resp)

	return nil
}

func printTable(w io.Writer, resp web.ExtractResponse) {
	width := runewidth.StringWidth("EMAIL")
	for _, r := range resp.Emails {
		if n := runewidth.StringWidth(r.Address); n > width {
			width = n
		}
	}

	fmt.Fprintf(w, "%s  %-7s  %s\n", runewidth.FillRight("EMAIL", width), "STATUS", "SOURCE")

	for _, r := range resp.Emails {
		status := color.GreenString("%-7s", r.Status)
		if r.Status != extract.Valid {
			status = color.RedString("%-7s", r.Status)
		}

		fmt.Fprintf(w, "%s  %s  %s\n", runewidth.FillRight(r.Address, width), status, r.Source)
	}

	fmt.Fprintln(w, resp.Message)
}
