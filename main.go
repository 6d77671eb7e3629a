package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/fsvalue/internal/config"
	"github.com/mcncl/fsvalue/internal/errors"
	"github.com/mcncl/fsvalue/internal/output"
	"github.com/mcncl/fsvalue/internal/parser"
)

// Version information
const (
	Version = "0.1.0"
)

// Globals are the flags shared by every command
type Globals struct {
	Input         string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output        string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	ConfigFile    string `help:"Path to config file. Defaults to .fsvalue.yml in the current directory or a parent." short:"c" name:"config" type:"path"`
	Debug         bool   `help:"Enable debug logging." short:"d"`
	Interactive   bool   `help:"Read JSON typed on the terminal until Ctrl+D." short:"I"`
	Format        string `help:"Output format: json, yaml or cbor." short:"f"`
	Indent        int    `help:"Indent width for JSON and YAML output. 0 prints compact JSON." default:"-1"`
	Project       string `help:"Project ID used to build document names." env:"FSVALUE_PROJECT"`
	Database      string `help:"Database ID used to build document names." env:"FSVALUE_DATABASE"`
	SpecialValues string `help:"How references and geo-points are decoded: literal or handle."`
	DetectTimes   bool   `help:"Encode RFC 3339 timestamp strings as timestampValue."`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Encode    EncodeCmd    `cmd:"" help:"Encode a native JSON value into a wire value."`
	Decode    DecodeCmd    `cmd:"" help:"Decode a wire value into native JSON."`
	EncodeDoc EncodeDocCmd `cmd:"" name:"encode-doc" help:"Encode a native JSON object into a wire document."`
	DecodeDoc DecodeDocCmd `cmd:"" name:"decode-doc" help:"Decode a wire document into a native object with its id."`
	Shape     ShapeCmd     `cmd:"" help:"Generate Go structs describing a wire document."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

// Context holds the runtime context handed to every command
type Context struct {
	*Globals
	Config *config.Config
	Logger *slog.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// StdinIsTerminal is true when nothing is piped in
	StdinIsTerminal bool
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("fsvalue"),
		kong.Description("Convert between native JSON values and Firestore wire values"),
		kong.UsageOnError(),
	)

	logger := newLogger(os.Stderr, cli.Debug)

	ctx, err := newContext(&cli.Globals, logger)
	if err == nil {
		ctx.StdinIsTerminal = isTerminal(os.Stdin)
		err = kctx.Run(ctx)
	}
	if err != nil {
		logger.Debug("command failed", "command", kctx.Command(), "error", err)
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: fsvalue --help\n")
		os.Exit(1)
	}
}

// newLogger writes text logs to w: debug level when requested, warnings otherwise
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newContext resolves configuration with CLI flags taking precedence
func newContext(g *Globals, logger *slog.Logger) (*Context, error) {
	configPath := g.ConfigFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	overrides := config.Overrides{
		Project:       g.Project,
		Database:      g.Database,
		SpecialValues: g.SpecialValues,
		Format:        g.Format,
		Debug:         g.Debug,
	}
	if g.DetectTimes {
		overrides.DetectTimes = &g.DetectTimes
	}
	if g.Indent >= 0 {
		overrides.Indent = &g.Indent
	}

	cfg, err := config.LoadConfigWithCLI(configPath, overrides)
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}
	if cfg.Dev.Debug && !g.Debug {
		logger = newLogger(os.Stderr, true)
	}
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}

	return &Context{
		Globals: g,
		Config:  cfg,
		Logger:  logger,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// readInput returns the raw input bytes from the input file or stdin
func (c *Context) readInput() ([]byte, error) {
	if c.Input != "" {
		c.Logger.Debug("reading input file", "path", c.Input)
		return parser.ReadFile(c.Input)
	}

	if c.StdinIsTerminal {
		if !c.Interactive {
			return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
		return c.readInteractiveInput()
	}

	data, err := io.ReadAll(c.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	c.Logger.Debug("read stdin", "bytes", len(data))
	return data, nil
}

// readInteractiveInput lets users paste JSON and signal completion with Ctrl+D (EOF)
func (c *Context) readInteractiveInput() ([]byte, error) {
	fmt.Fprintln(c.Stderr, "fsvalue interactive mode")
	fmt.Fprintln(c.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(c.Stdin)
	var b strings.Builder
	for {
		line, err := reader.ReadString('\n')
		b.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
	}

	if strings.TrimSpace(b.String()) == "" {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}
	fmt.Fprintln(c.Stderr, "\nProcessing JSON...")
	return []byte(b.String()), nil
}

// renderer builds the output renderer from the resolved configuration
func (c *Context) renderer() (*output.Renderer, error) {
	format, err := output.ParseFormat(c.Config.Output.Format)
	if err != nil {
		return nil, errors.NewOutputError("invalid output format", err)
	}
	return output.NewRenderer(format, c.Config.Output.Indent), nil
}

// emit serialises v in the configured format and writes it out
func (c *Context) emit(v any) error {
	r, err := c.renderer()
	if err != nil {
		return err
	}
	data, err := r.Render(v)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to render %s output", r.Format()), err)
	}
	if !r.Format().IsBinary() && len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return c.writeOutput(data)
}

// writeOutput writes data to the output file or stdout
func (c *Context) writeOutput(data []byte) error {
	if c.Output != "" {
		if err := os.WriteFile(c.Output, data, 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", c.Output), err)
		}
		c.Logger.Debug("output written", "path", c.Output, "bytes", len(data))
		fmt.Fprintf(c.Stderr, "Output written to %s\n", c.Output)
		return nil
	}

	if _, err := c.Stdout.Write(data); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
