// Command pdfextract extracts text, tables and images from a PDF file and
// writes them as JSON, Markdown or HTML.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/document"
	"github.com/dgallion1/pdfextract/internal/extract"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("pdfextract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	scanned := fs.Bool("scanned", false, "rasterise pages and OCR them instead of reading the text layer")
	fs.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "output format: json, markdown or html")
	fs.IntVar(&cfg.RenderDPI, "dpi", cfg.RenderDPI, "render resolution for -scanned")
	fs.IntVar(&cfg.PageWorkers, "page-workers", cfg.PageWorkers, "pages processed concurrently")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pdfextract [-scanned] [-format json|markdown|html] [-dpi N] [-page-workers N] <input.pdf> <output>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 1
	}
	input, output := fs.Arg(0), fs.Arg(1)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}

	ex, err := extract.FromConfig(cfg, log)
	if err != nil {
		log.Error("initialize extractor", "error", err)
		return 1
	}

	mode := config.PipelineDigital
	if *scanned {
		mode = config.PipelineScanned
	}
	doc, err := ex.Process(ctx, input, mode)
	if err != nil {
		log.Error("extraction failed", "path", input, "error", err)
		return 1
	}

	if err := document.WriteFile(output, doc, cfg.OutputFormat); err != nil {
		log.Error("write output", "path", output, "error", err)
		return 1
	}
	fmt.Fprintf(stdout, "PDF data saved to %s\n", output)
	return 0
}
