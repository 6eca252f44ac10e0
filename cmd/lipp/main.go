// Command lipp drives the cpp preprocessor over real files: it wires
// Preprocessor to the OS filesystem and prints either the
// preprocessed text or a debug token dump.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/andrewchambers/lipp/cpp"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	app := &cli.App{
		Name:  "lipp",
		Usage: "a standalone C-style preprocessor",
		Commands: []*cli.Command{
			preprocessCommand(logger),
			tokenizeCommand(logger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		reportError(logger, err)
		os.Exit(1)
	}
}

func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "define", Aliases: []string{"D"}, Usage: "define NAME or NAME=VALUE"},
		&cli.StringSliceFlag{Name: "include-dir", Aliases: []string{"I"}, Usage: "additional #include search directory"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write to this file instead of stdout"},
	}
}

func preprocessCommand(logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "preprocess",
		Usage:     "expand directives and macros, printing the resulting text",
		ArgsUsage: "FILE",
		Flags:     sharedFlags(),
		Action: func(c *cli.Context) error {
			pp, out, err := setupFromContext(c)
			if err != nil {
				return err
			}
			defer out.Close()

			text := pp.ReadAll()
			if pp.Err() != nil {
				return pp.Err()
			}
			logger.Debug("preprocessed", zap.Int("bytes", len(text)))
			_, werr := out.WriteString(text)
			return werr
		},
	}
}

func tokenizeCommand(logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "tokenize",
		Usage:     "print one line per emitted token, for debugging",
		ArgsUsage: "FILE",
		Flags:     sharedFlags(),
		Action: func(c *cli.Context) error {
			pp, out, err := setupFromContext(c)
			if err != nil {
				return err
			}
			defer out.Close()

			count := 0
			for {
				tok, ok := pp.NextToken(cpp.Flags{})
				if !ok {
					break
				}
				count++
				fmt.Fprintf(out, "%s\n", tok)
			}
			logger.Debug("tokenized", zap.Int("tokens", count))
			if pp.Err() != nil {
				return pp.Err()
			}
			return nil
		},
	}
}

// setupFromContext builds a Preprocessor from a command's flags and
// positional file argument, and the writer its output should go to.
func setupFromContext(c *cli.Context) (*cpp.Preprocessor, *outputWriter, error) {
	path := c.Args().First()
	if path == "" {
		return nil, nil, cli.Exit("missing FILE argument", 2)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", path)
	}

	pp := cpp.New()
	pp.SetFileReader(cpp.NewOSFileReader(c.StringSlice("include-dir")...))

	for _, def := range c.StringSlice("define") {
		name, value, _ := strings.Cut(def, "=")
		pp.Define(name, value)
	}

	pp.IncludeStringNamed(string(data), path)

	out, err := newOutputWriter(c.String("output"))
	if err != nil {
		return nil, nil, err
	}
	return pp, out, nil
}

// outputWriter wraps either stdout or a created file behind one
// io.StringWriter-ish surface so callers don't special-case stdout.
type outputWriter struct {
	f      *os.File
	w      *bufio.Writer
	isFile bool
}

func newOutputWriter(path string) (*outputWriter, error) {
	if path == "" {
		return &outputWriter{f: os.Stdout, w: bufio.NewWriter(os.Stdout)}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	return &outputWriter{f: f, w: bufio.NewWriter(f), isFile: true}, nil
}

func (o *outputWriter) WriteString(s string) (int, error) {
	return o.w.WriteString(s)
}

func (o *outputWriter) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

func (o *outputWriter) Close() error {
	if err := o.w.Flush(); err != nil {
		return err
	}
	if o.isFile {
		return o.f.Close()
	}
	return nil
}

// reportError prints err to stderr, and if it is a *cpp.Error, also
// shows the offending source line pulled back off disk.
func reportError(logger *zap.Logger, err error) {
	fmt.Fprintln(os.Stderr, err)

	ppErr, ok := errors.Cause(err).(*cpp.Error)
	if !ok || ppErr.SourceName == "" {
		return
	}
	f, openErr := os.Open(ppErr.SourceName)
	if openErr != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		if lineno == ppErr.Line {
			fmt.Fprintf(os.Stderr, "  %d | %s\n", lineno, scanner.Text())
			break
		}
	}
}
