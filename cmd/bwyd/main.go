// bwyd interprets recipe scripts and renders them.
//
// Usage:
//
//	bwyd [-verbose] [-quiet] [-log-file f] [-convert table.yaml] [-json]
//	     [-schema] [-index db] [-list] [-workers n] [-strict] [-browse] script...
//
// Without -index, modules are indexed in memory for the run and -list
// prints that index.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/bwyd/internal/conversation"
	"github.com/hammamikhairi/bwyd/internal/convert"
	"github.com/hammamikhairi/bwyd/internal/corpus"
	"github.com/hammamikhairi/bwyd/internal/display"
	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/engine"
	"github.com/hammamikhairi/bwyd/internal/logger"
	"github.com/hammamikhairi/bwyd/internal/render"
	"github.com/hammamikhairi/bwyd/internal/storage"
)

// Exit statuses.
const (
	exitOK       = 0
	exitUsage    = 1
	exitFailed   = 2
	exitWarnings = 3
)

// Environment variables read after .env is loaded.
const (
	envConvert = "BWYD_CONVERT"
	envIndex   = "BWYD_INDEX"
	envWorkers = "BWYD_WORKERS"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "stderr", "file to write logs to (use \"stderr\" to log to console)")
	convertPath := flag.String("convert", os.Getenv(envConvert), "extra conversion table (YAML or JSON) merged into the defaults")
	asJSON := flag.Bool("json", false, "print the output model as JSON")
	asSchema := flag.Bool("schema", false, "print Schema.org Recipe JSON-LD")
	indexPath := flag.String("index", os.Getenv(envIndex), "SQLite database to record interpreted modules in")
	workers := flag.Int("workers", envInt(envWorkers, 4), "scripts interpreted at once")
	strict := flag.Bool("strict", false, "exit with status 3 when any warning is reported")
	lenient := flag.Bool("lenient-units", false, "skip aggregation unit mismatches instead of failing")
	browse := flag.Bool("browse", false, "open the interactive closure browser for the first script")
	list := flag.Bool("list", false, "print the module index after the run")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] script...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		return exitUsage
	}
	if *asJSON && *asSchema {
		fmt.Fprintln(os.Stderr, "error: -json and -schema are mutually exclusive")
		return exitUsage
	}

	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Keep third-party output on the same stream as ours.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logger.ParseLevel(*verbose, *quiet), logOut)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Wire dependencies.
	table := convert.NewTable(log.Named("convert"))
	if *convertPath != "" {
		if err := table.LoadFile(*convertPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitUsage
		}
	}

	notifier := conversation.NewCLINotifier(log.Named("notify"), func(format string, a ...interface{}) {
		fmt.Fprintf(os.Stderr, format+"\n", a...)
	})

	engOpts := []engine.Option{engine.WithWarningSink(notifier.Func(ctx))}
	if *lenient {
		engOpts = append(engOpts, engine.WithLenientUnits())
	}
	eng := engine.New(table, log.Named("engine"), engOpts...)

	var index domain.IndexStore = storage.NewMemoryStore(log.Named("index"))
	if *indexPath != "" {
		store, err := storage.OpenSQLite(*indexPath, log.Named("index"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitUsage
		}
		defer store.Close()
		index = store
	}

	runner, err := corpus.New(eng, log.Named("corpus"),
		corpus.WithWorkers(*workers), corpus.WithIndex(index))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitUsage
	}

	app := &cliApp{log: log, out: os.Stdout, conv: table}

	results, err := runner.Run(ctx, paths)
	if err != nil {
		log.Error("run: %v", err)
		return exitFailed
	}

	app.reportFailures(results)

	switch {
	case *browse:
		if err := app.browse(ctx, results[0]); err != nil {
			log.Error("browse: %v", err)
			return exitFailed
		}
	case *asJSON:
		app.printJSON(results, func(r corpus.Result) (any, error) { return r.Model, nil })
	case *asSchema:
		app.printJSON(results, func(r corpus.Result) (any, error) {
			return runner.Renderer().SchemaOrg(r.Module)
		})
	default:
		app.printModels(results)
	}

	if *list {
		if err := app.printIndex(ctx, index); err != nil {
			log.Error("list: %v", err)
			return exitFailed
		}
	}

	notifier.Summary(ctx)

	if corpus.Failed(results) > 0 {
		return exitFailed
	}
	if *strict && (log.Warnings() > 0 || notifier.Count() > 0) {
		return exitWarnings
	}
	return exitOK
}

type cliApp struct {
	log  *logger.Logger
	out  io.Writer
	conv display.ConversionSearcher
}

func (a *cliApp) reportFailures(results []corpus.Result) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintln(os.Stderr, display.RenderError(r.Path, r.Err))
		}
	}
}

func (a *cliApp) printModels(results []corpus.Result) {
	for _, r := range results {
		if r.Err == nil {
			fmt.Fprintln(a.out, display.RenderModel(r.Model))
		}
	}
}

// printJSON writes one document for a single script, or an array for a
// batch. Failed scripts are left out.
func (a *cliApp) printJSON(results []corpus.Result, doc func(corpus.Result) (any, error)) {
	docs := make([]any, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		d, err := doc(r)
		if err != nil {
			fmt.Fprintln(os.Stderr, display.RenderError(r.Path, err))
			continue
		}
		docs = append(docs, d)
	}

	var v any = docs
	if len(results) == 1 {
		if len(docs) == 0 {
			return
		}
		v = docs[0]
	}
	if err := render.WriteJSON(a.out, v); err != nil {
		a.log.Error("writing output: %v", err)
	}
}

func (a *cliApp) printIndex(ctx context.Context, index domain.IndexStore) error {
	entries, err := index.List(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(a.out, display.RenderIndex(entries))
	return err
}

func (a *cliApp) browse(ctx context.Context, r corpus.Result) error {
	if r.Err != nil {
		return fmt.Errorf("cannot browse %s: %w", r.Path, r.Err)
	}
	// The browser owns the terminal.
	a.log.SetLevel(logger.LevelOff)

	parser := conversation.NewKeywordParser(a.log.Named("browser"))
	return display.NewBrowser(r.Module, r.Model, parser, a.conv, a.log).Run(ctx)
}

// envInt reads an integer environment variable, falling back to def when
// unset or malformed.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
