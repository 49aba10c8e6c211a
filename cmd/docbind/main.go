package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/davecgh/go-spew/spew"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/diag"
	"github.com/reoring/docbind/i18n"
	"github.com/reoring/docbind/load"
	"github.com/reoring/docbind/node"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "docbind CLI\n\nUsage:\n  docbind tree [-format auto|yaml|json] FILE\n  docbind check [-format auto|yaml|json] [-dump] FILE\n  docbind watch [-format auto|yaml|json] FILE\n\nEnvironment:\n  DOCBIND_LOG_LEVEL, DOCBIND_LOG_FORMAT, DOCBIND_MODE, DOCBIND_UNKNOWN, DOCBIND_LANG")
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	st, err := loadSettings()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	logger, err := st.logger(stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	i18n.SetLanguage(st.Lang)
	opts, err := st.options()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	switch args[0] {
	case "tree":
		return treeCmd(args[1:], stdout, stderr)
	case "check":
		return checkCmd(args[1:], opts, logger, stdout, stderr)
	case "watch":
		return watchCmd(ctx, args[1:], opts, logger, stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

// fileArgs parses the shared -format flag, any flags added by extra and the
// single FILE argument.
func fileArgs(name string, args []string, stderr io.Writer, extra ...func(*flag.FlagSet)) (string, load.Format, bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var format string
	fs.StringVar(&format, "format", "", "document format: auto, yaml or json (default from extension)")
	for _, fn := range extra {
		fn(fs)
	}
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		if err == nil {
			fs.Usage()
		}
		return "", 0, false
	}
	path := fs.Arg(0)
	f := load.FormatOf(path)
	if format != "" {
		var err error
		if f, err = load.ParseFormat(format); err != nil {
			fmt.Fprintln(stderr, err)
			return "", 0, false
		}
	}
	return path, f, true
}

func readTree(path string, f load.Format) (*node.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return load.Parse(data, f)
}

func treeCmd(args []string, stdout, stderr io.Writer) int {
	path, f, ok := fileArgs("tree", args, stderr)
	if !ok {
		return 2
	}
	root, err := readTree(path, f)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	printTree(stdout, root, "")
	return 0
}

// printTree writes one line per node: JSON Pointer, kind, position and, for
// scalars, the canonical text.
func printTree(w io.Writer, n *node.Node, ptr string) {
	loc := ""
	if n.Line() > 0 {
		loc = fmt.Sprintf(" @%d:%d", n.Line(), n.Column())
	}
	p := ptr
	if p == "" {
		p = "/"
	}
	if s, ok := n.Text(); ok {
		fmt.Fprintf(w, "%s\t%s%s\t%q\n", p, n.Kind(), loc, s)
		return
	}
	fmt.Fprintf(w, "%s\t%s%s\tlen=%d\n", p, n.Kind(), loc, n.Len())
	switch n.Kind() {
	case node.KindSequence:
		for i, it := range n.Items() {
			printTree(w, it, fmt.Sprintf("%s/%d", ptr, i))
		}
	case node.KindMapping:
		for _, pr := range n.Pairs() {
			k, ok := pr.Key.Text()
			if !ok {
				k = "<" + pr.Key.Kind().String() + ">"
			}
			printTree(w, pr.Value, ptr+"/"+escape(k))
		}
	}
}

func escape(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}

func checkCmd(args []string, opts docbind.Options, logger *slog.Logger, stdout, stderr io.Writer) int {
	var dump bool
	path, f, ok := fileArgs("check", args, stderr, func(fs *flag.FlagSet) {
		fs.BoolVar(&dump, "dump", false, "print the mapped configuration")
	})
	if !ok {
		return 2
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	c := diag.NewCollector()
	opts.Reporter = diag.Tee(c, diag.NewSlogReporter(logger))
	cfg, ok, err := load.Bytes[ServiceConfig](data, f, opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	evs := c.Events()
	if dump {
		spew.Fdump(stdout, cfg)
	}
	if !ok {
		fmt.Fprintf(stdout, "%s: invalid (%d errors, %d warnings)\n", path, len(evs.Errors()), len(evs)-len(evs.Errors()))
		for _, e := range evs {
			fmt.Fprintf(stdout, "  %s: %s\n", e.Severity, e.Error())
		}
		return 1
	}
	fmt.Fprintf(stdout, "%s: ok (app %s, port %d, %d warnings)\n", path, cfg.App.Name, cfg.App.Port, len(evs))
	return 0
}

func watchCmd(ctx context.Context, args []string, opts docbind.Options, logger *slog.Logger, stdout, stderr io.Writer) int {
	path, f, ok := fileArgs("watch", args, stderr)
	if !ok {
		return 2
	}
	opts.Reporter = diag.NewSlogReporter(logger)
	w := load.NewWatcher[ServiceConfig](path, load.WatchOptions{Logger: logger, Map: opts, Format: f})
	err := w.Run(ctx, func(r load.Reload[ServiceConfig]) {
		switch {
		case r.Err != nil:
			fmt.Fprintf(stdout, "%s %s: error: %v\n", r.ID, r.Path, r.Err)
		case !r.OK:
			fmt.Fprintf(stdout, "%s %s: invalid\n", r.ID, r.Path)
		default:
			fmt.Fprintf(stdout, "%s %s: ok (app %s, port %d)\n", r.ID, r.Path, r.Value.App.Name, r.Value.App.Port)
		}
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
