package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gosuri/uiprogress"

	"github.com/revelaction/disco/config"
	"github.com/revelaction/disco/corpus"
	"github.com/revelaction/disco/query"
	"github.com/revelaction/disco/render"
	"github.com/revelaction/disco/stac"
	"github.com/revelaction/disco/stat"
)

// Set via -ldflags at build time.
var (
	BuildTag    = "dev"
	BuildCommit = "none"
)

// UI contains the output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
}

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr}

	cmd, args, verbose, err := parseMainArgs(os.Args[1:], ui)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		fprintErr(ui.Err, err)
		os.Exit(1)
	}

	if err := runCommand(cmd, args, verbose, cfg, ui); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fprintErr(ui.Err, err)
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "disco: %v\n", err)
}

func runCommand(cmd string, args []string, verbose int, cfg *config.Config, ui UI) error {
	switch cmd {
	case "help":
		if len(args) > 0 {
			return runCommand(args[0], []string{"--help"}, verbose, cfg, ui)
		}
		fs := flag.NewFlagSet("disco", flag.ContinueOnError)
		fs.SetOutput(ui.Out)
		setupUsage(fs)
		fs.Usage()
		return nil

	case "ls":
		opts, err := parseLsArgs(args, cfg, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return lsCommand(opts, ui)

	case "text":
		opts, err := parseTextArgs(args, cfg, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return textCommand(opts, verbose, ui)

	case "count":
		opts, err := parseCountArgs(args, cfg, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return countCommand(opts, verbose, ui)

	case "query":
		opts, err := parseQueryArgs(args, cfg, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return queryCommand(opts, ui)

	case "import":
		opts, err := parseImportArgs(args, cfg, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return importCommand(opts, ui)

	case "export":
		opts, err := parseExportArgs(args, cfg, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return exportCommand(opts, ui)

	case "bash":
		if err := parseBashArgs(args, ui); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return bashCommand(ui)

	case "complete":
		completeArgs, err := parseCompleteArgs(args, ui)
		if err != nil {
			return err
		}
		return completeCommand(completeArgs, ui)

	case "version":
		return versionCommand(ui)
	}

	return fmt.Errorf("unknown command: %s", cmd)
}

func lsCommand(opts LsOptions, ui UI) error {
	rd, err := stac.NewReader(opts.Corpus)
	if err != nil {
		return err
	}

	ids, err := rd.Files()
	if err != nil {
		return err
	}

	for _, id := range corpus.Filter(ids, filterPredicate(opts.Filter)) {
		fmt.Fprintf(ui.Out, "📖 %s\n", id)
	}

	return nil
}

func textCommand(opts TextOptions, verbose int, ui UI) error {
	c, err := loadCorpus(opts.Corpus, opts.Filter, verbose, ui)
	if err != nil {
		return err
	}

	r := render.NewRenderer(ui.Out)
	r.HasColor = !opts.NoColor
	r.HasMarkers = !opts.NoMarkers

	for _, id := range c.Keys() {
		r.Document(id, c[id])
	}

	return nil
}

func countCommand(opts CountOptions, verbose int, ui UI) error {
	c, err := loadCorpus(opts.Corpus, opts.Filter, verbose, ui)
	if err != nil {
		return err
	}

	hdl := stat.NewHandler()
	for _, id := range c.Keys() {
		hdl.Aggregate(c[id])
	}

	printStats(hdl.Get(), ui)
	return nil
}

func queryCommand(opts QueryOptions, ui UI) error {
	c, err := corpusLibrary(opts.Corpus, opts.Filter, ui)
	if err != nil {
		return err
	}

	// now present the REPL over the loaded corpus
	h := query.NewHandler(c, queryRenderer(opts, ui))
	return h.Run()
}

func queryRenderer(opts QueryOptions, ui UI) *render.Renderer {
	r := render.NewRenderer(ui.Out)
	r.HasColor = !opts.NoColor
	return r
}

// loadCorpus enumerates, filters and slurps in one go. Per-file
// parse failures are reported and the rest of the corpus is kept.
func loadCorpus(corpusPath string, f FilterOptions, verbose int, ui UI) (corpus.Corpus, error) {
	rd, err := stac.NewReader(corpusPath)
	if err != nil {
		return nil, err
	}
	rd.Progress = ui.Err

	ids, err := rd.Files()
	if err != nil {
		return nil, err
	}
	ids = corpus.Filter(ids, filterPredicate(f))

	c, err := rd.Slurp(ids, verbose > 0)
	if err != nil {
		var loadErr *corpus.LoadError
		if errors.As(err, &loadErr) {
			fprintErr(ui.Err, loadErr)
			return c, nil
		}
		return nil, err
	}
	return c, nil
}

// corpusLibrary is loadCorpus with a progress bar, for the
// interactive commands where a long load would otherwise look hung.
func corpusLibrary(corpusPath string, f FilterOptions, ui UI) (corpus.Corpus, error) {
	rd, err := stac.NewReader(corpusPath)
	if err != nil {
		return nil, err
	}

	ids, err := rd.Files()
	if err != nil {
		return nil, err
	}
	ids = corpus.Filter(ids, filterPredicate(f))

	// Start progress indicator
	uiprogress.Start()                 // start rendering
	bar := uiprogress.AddBar(len(ids)) // Add a new bar
	bar.AppendCompleted()
	bar.PrependElapsed()
	// Append the current FileId to the progress bar
	var current corpus.FileId
	bar.AppendFunc(func(b *uiprogress.Bar) string {
		return current.String()
	})

	c, err := rd.SlurpEach(ids, func(cur, total int, id corpus.FileId) {
		current = id
		bar.Incr()
	})

	// stop rendering
	uiprogress.Stop()

	if err != nil {
		var loadErr *corpus.LoadError
		if errors.As(err, &loadErr) {
			fprintErr(ui.Err, loadErr)
			return c, nil
		}
		return nil, err
	}

	return c, nil
}

func printStats(s stat.Stats, ui UI) {
	fmt.Fprintf(ui.Out, "documents %d, units %d, relations %d, schemas %d\n",
		s.Documents, s.Units, s.Relations, s.Schemas)

	printTypeCounts(ui.Out, "units", s.UnitTypes)
	printTypeCounts(ui.Out, "relations", s.RelationTypes)
	printTypeCounts(ui.Out, "schemas", s.SchemaTypes)
}

func printTypeCounts(w io.Writer, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Fprintf(w, "%s:\n", label)
	for _, t := range types {
		fmt.Fprintf(w, "    %6d %s\n", counts[t], t)
	}
}
