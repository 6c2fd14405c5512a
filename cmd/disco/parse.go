package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/revelaction/disco/config"
	"github.com/revelaction/disco/corpus"
	"github.com/revelaction/disco/stac"
)

// FilterOptions narrows the set of corpus files a command works on.
// Doc and Subdoc entries are glob patterns, Stage and Annotator
// entries are exact matches.
type FilterOptions struct {
	Docs       []string
	Subdocs    []string
	Stages     []string
	Annotators []string
	Metal      bool
}

// Option structs for subcommands that have flags
type LsOptions struct {
	Corpus string
	Filter FilterOptions
}

type TextOptions struct {
	Corpus    string
	Filter    FilterOptions
	NoColor   bool
	NoMarkers bool
}

type CountOptions struct {
	Corpus string
	Filter FilterOptions
}

type QueryOptions struct {
	Corpus  string
	Filter  FilterOptions
	NoColor bool
}

type ImportOptions struct {
	From   string
	To     string
	Filter FilterOptions
}

type ExportOptions struct {
	From string
	To   string
}

// stringSliceFlag implements flag.Value for multi-value strings
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// countFlag implements flag.Value for repeatable boolean flags
type countFlag int

func (c *countFlag) String() string {
	return strconv.Itoa(int(*c))
}

func (c *countFlag) Set(string) error {
	*c++
	return nil
}

func (c *countFlag) IsBoolFlag() bool { return true }

// filterPredicate builds the identifier predicate for a set of
// filter flags. All given dimensions must match.
func filterPredicate(f FilterOptions) func(corpus.FileId) bool {
	return func(id corpus.FileId) bool {
		if !matchGlobs(f.Docs, id.Doc) {
			return false
		}
		if !matchGlobs(f.Subdocs, id.Subdoc) {
			return false
		}
		if !matchExact(f.Stages, id.Stage) {
			return false
		}
		if !matchExact(f.Annotators, id.Annotator) {
			return false
		}
		if f.Metal && !stac.IsMetal(id) {
			return false
		}
		return true
	}
}

func matchGlobs(patterns []string, value string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, value); err == nil && ok {
			return true
		}
	}
	return false
}

func matchExact(wanted []string, value string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if w == value {
			return true
		}
	}
	return false
}

// addFilterFlags registers the shared filter flags on a command
// flag set.
func addFilterFlags(fs *flag.FlagSet, f *FilterOptions) {
	docs := (*stringSliceFlag)(&f.Docs)
	fs.Var(docs, "doc", "Only files whose document name matches the glob pattern (repeatable)")
	fs.Var(docs, "d", "alias for -doc")

	subdocs := (*stringSliceFlag)(&f.Subdocs)
	fs.Var(subdocs, "subdoc", "Only files whose subdocument matches the glob pattern (repeatable)")
	fs.Var(subdocs, "s", "alias for -subdoc")

	stages := (*stringSliceFlag)(&f.Stages)
	fs.Var(stages, "stage", "Only files of this annotation stage (repeatable)")
	fs.Var(stages, "g", "alias for -stage")

	annotators := (*stringSliceFlag)(&f.Annotators)
	fs.Var(annotators, "anno", "Only files by this annotator (repeatable)")
	fs.Var(annotators, "a", "alias for -anno")

	fs.BoolVar(&f.Metal, "metal", false, "Only files by the canonical annotators (bronze, silver, gold)")
	fs.BoolVar(&f.Metal, "m", false, "alias for -metal")
}

func addCorpusFlag(fs *flag.FlagSet, cfg *config.Config, target *string) {
	fs.StringVar(target, "corpus", cfg.Corpus, "Path to the corpus root directory")
	fs.StringVar(target, "c", cfg.Corpus, "alias for -corpus")
}

func checkCorpus(path string) error {
	if path == "" {
		return errors.New("Corpus path must be specified via -c or DISCO_CORPUS")
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("Corpus path not found: %s", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("Corpus path is not a directory: %s", path)
	}

	return nil
}

func parseMainArgs(args []string, ui UI) (string, []string, int, error) {
	fs := flag.NewFlagSet("disco", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	setupUsage(fs)

	var verbose countFlag
	fs.Var(&verbose, "verbose", "Report progress while loading documents (repeatable)")
	fs.Var(&verbose, "v", "alias for -verbose")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return "", nil, 0, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return "", nil, 0, err
	}

	if fs.NArg() == 0 {
		fs.SetOutput(ui.Err)
		fs.Usage()
		return "", nil, 0, errors.New("no command provided")
	}

	cmd := fs.Arg(0)
	cmdArgs := fs.Args()[1:]
	return cmd, cmdArgs, int(verbose), nil
}

func parseLsArgs(args []string, cfg *config.Config, ui UI) (LsOptions, error) {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts LsOptions
	addCorpusFlag(fs, cfg, &opts.Corpus)
	addFilterFlags(fs, &opts.Filter)

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s ls [options]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  List the annotation files of the corpus.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return opts, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return opts, err
	}

	if err := checkCorpus(opts.Corpus); err != nil {
		return opts, err
	}

	return opts, nil
}

func parseTextArgs(args []string, cfg *config.Config, ui UI) (TextOptions, error) {
	fs := flag.NewFlagSet("text", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts TextOptions
	addCorpusFlag(fs, cfg, &opts.Corpus)
	addFilterFlags(fs, &opts.Filter)

	fs.BoolVar(&opts.NoColor, "no-color", false, "Show document text without formatting (color)")
	fs.BoolVar(&opts.NoMarkers, "no-markers", false, "Show document text without discourse unit markers")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s text [options]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Show the text of the selected documents with unit markers.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return opts, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return opts, err
	}

	if err := checkCorpus(opts.Corpus); err != nil {
		return opts, err
	}

	return opts, nil
}

func parseCountArgs(args []string, cfg *config.Config, ui UI) (CountOptions, error) {
	fs := flag.NewFlagSet("count", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts CountOptions
	addCorpusFlag(fs, cfg, &opts.Corpus)
	addFilterFlags(fs, &opts.Filter)

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s count [options]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Count annotations per type over the selected documents.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return opts, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return opts, err
	}

	if err := checkCorpus(opts.Corpus); err != nil {
		return opts, err
	}

	return opts, nil
}

func parseQueryArgs(args []string, cfg *config.Config, ui UI) (QueryOptions, error) {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts QueryOptions
	addCorpusFlag(fs, cfg, &opts.Corpus)
	addFilterFlags(fs, &opts.Filter)

	fs.BoolVar(&opts.NoColor, "no-color", false, "Show documents without formatting (color)")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s query [options]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Enter interactive query mode over the selected documents.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return opts, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return opts, err
	}

	if err := checkCorpus(opts.Corpus); err != nil {
		return opts, err
	}

	return opts, nil
}

func parseImportArgs(args []string, cfg *config.Config, ui UI) (ImportOptions, error) {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts ImportOptions
	fs.StringVar(&opts.From, "from", cfg.Corpus, "Source corpus root directory")
	fs.StringVar(&opts.To, "to", cfg.Db, "Target SQLite database file")
	addFilterFlags(fs, &opts.Filter)

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s import [options] --from <dir> --to <sqlite_file>\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Import corpus documents from the filesystem to SQLite.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return opts, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return opts, err
	}

	if opts.From == "" || opts.To == "" {
		return opts, errors.New("--from and --to are required")
	}

	if err := checkCorpus(opts.From); err != nil {
		return opts, err
	}

	return opts, nil
}

func parseExportArgs(args []string, cfg *config.Config, ui UI) (ExportOptions, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts ExportOptions
	fs.StringVar(&opts.From, "from", cfg.Db, "Source SQLite database file")
	fs.StringVar(&opts.To, "to", "", "Target corpus root directory")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s export --from <sqlite_file> --to <dir>\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Export corpus documents from SQLite to the filesystem.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return opts, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return opts, err
	}

	if opts.From == "" || opts.To == "" {
		return opts, errors.New("--from and --to are required")
	}

	if _, err := os.Stat(opts.From); err != nil {
		return opts, fmt.Errorf("Database file not found: %s", opts.From)
	}

	return opts, nil
}

func parseBashArgs(args []string, ui UI) error {
	fs := flag.NewFlagSet("bash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s bash\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Output bash completion script.\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return err
	}
	return nil
}

func parseCompleteArgs(args []string, ui UI) ([]string, error) {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return fs.Args(), nil
}

func setupUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: %s [-v] command [command options] [arguments...]\n", os.Args[0])
		_, _ = fmt.Fprintf(output, "\nDescription:\n")
		_, _ = fmt.Fprintf(output, "  Browse and query discourse annotation corpora\n")
		_, _ = fmt.Fprintf(output, "\nCommands:\n")
		_, _ = fmt.Fprintf(output, "  ls        List the annotation files of the corpus.\n")
		_, _ = fmt.Fprintf(output, "  text      Show document text with discourse unit markers.\n")
		_, _ = fmt.Fprintf(output, "  count     Count annotations per type.\n")
		_, _ = fmt.Fprintf(output, "  query     Enter interactive query mode.\n")
		_, _ = fmt.Fprintf(output, "  import    Import corpus documents from filesystem to SQLite.\n")
		_, _ = fmt.Fprintf(output, "  export    Export corpus documents from SQLite to filesystem.\n")
		_, _ = fmt.Fprintf(output, "  bash      Output bash completion script.\n")
		_, _ = fmt.Fprintf(output, "  version   Show version information.\n")
		_, _ = fmt.Fprintf(output, "  help      Show help for a command.\n")
	}
}
