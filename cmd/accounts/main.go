package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/accounts-coder/accounts"
	"github.com/wippyai/accounts-coder/layout"
	"github.com/wippyai/accounts-coder/schema"
	"github.com/wippyai/accounts-coder/value"
)

type config struct {
	schemaFile  string
	account     string
	decodeFile  string
	encodeFile  string
	outFile     string
	list        bool
	hexText     bool
	strict      bool
	verbose     bool
	interactive bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.schemaFile, "schema", "", "Path to schema file (.json IDL or .hcl)")
	flag.StringVar(&cfg.account, "account", "", "Account name (optional for -decode)")
	flag.StringVar(&cfg.decodeFile, "decode", "", "Decode account bytes from file (- for stdin)")
	flag.StringVar(&cfg.encodeFile, "encode", "", "Encode a JSON value from file (- for stdin)")
	flag.StringVar(&cfg.outFile, "out", "", "Write output to file instead of stdout")
	flag.BoolVar(&cfg.list, "list", false, "List accounts and exit")
	flag.BoolVar(&cfg.hexText, "hex", false, "Account bytes are hex text")
	flag.BoolVar(&cfg.strict, "strict", false, "Reject trailing bytes after the payload")
	flag.BoolVar(&cfg.verbose, "v", false, "Debug logging")
	flag.BoolVar(&cfg.interactive, "i", false, "Interactive mode with TUI")
	flag.Parse()

	if cfg.schemaFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: accounts -schema <idl.json|schema.hcl> -list")
		fmt.Fprintln(os.Stderr, "       accounts -schema <file> [-account name] -decode <file> [-hex] [-strict]")
		fmt.Fprintln(os.Stderr, "       accounts -schema <file> -account name -encode <value.json> [-hex] [-out file]")
		fmt.Fprintln(os.Stderr, "       accounts -schema <file> -i  (interactive mode)")
		os.Exit(1)
	}

	log := zap.NewNop()
	if cfg.verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l
		}
	}
	defer func() { _ = log.Sync() }()
	layout.SetLogger(log.Named("layout"))
	accounts.SetLogger(log.Named("accounts"))

	if err := run(cfg, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// createOutput opens the -out destination.
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func run(cfg config, stdin io.Reader, stdout io.Writer) (err error) {
	s, err := schema.LoadFile(cfg.schemaFile)
	if err != nil {
		return err
	}
	coder, err := accounts.New(s, accounts.Options{Strict: cfg.strict})
	if err != nil {
		return fmt.Errorf("build coder: %w", err)
	}

	if cfg.interactive {
		return runInteractive(cfg.schemaFile, coder)
	}

	out := stdout
	if cfg.outFile != "" {
		f, err := createOutput(cfg.outFile)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		out = f
	}

	switch {
	case cfg.list:
		return list(coder, out, isTerminal(out))

	case cfg.decodeFile != "":
		data, err := readInput(cfg.decodeFile, stdin)
		if err != nil {
			return err
		}
		if cfg.hexText {
			if data, err = parseHex(string(data)); err != nil {
				return err
			}
		}
		return decode(coder, cfg.account, data, out)

	case cfg.encodeFile != "":
		if cfg.account == "" {
			return fmt.Errorf("-encode requires -account")
		}
		data, err := readInput(cfg.encodeFile, stdin)
		if err != nil {
			return err
		}
		encoded, err := encode(coder, cfg.account, data)
		if err != nil {
			return err
		}
		if cfg.hexText {
			_, err = fmt.Fprintln(out, hex.EncodeToString(encoded))
			return err
		}
		_, err = out.Write(encoded)
		return err

	default:
		return list(coder, out, isTerminal(out))
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// parseHex accepts hex text with optional 0x prefix and whitespace.
func parseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse hex: %w", err)
	}
	return data, nil
}

func decode(coder *accounts.Coder, name string, data []byte, out io.Writer) error {
	var (
		v   value.Struct
		err error
	)
	if name == "" {
		name, v, err = coder.DecodeAny(data)
	} else {
		v, err = coder.Decode(name, data)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"account": name,
		"value":   value.ToNative(v),
	})
}

func encode(coder *accounts.Coder, name string, data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return coder.Encode(name, v)
}

var (
	nameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#98FB98"))
	discStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func list(coder *accounts.Coder, out io.Writer, styled bool) error {
	render := func(st lipgloss.Style, s string) string {
		if !styled {
			return s
		}
		return st.Render(s)
	}

	names := coder.Names()
	if len(names) == 0 {
		_, err := fmt.Fprintln(out, "No accounts.")
		return err
	}
	for _, name := range names {
		d, err := coder.Discriminator(name)
		if err != nil {
			return err
		}
		size, err := coder.Size(name)
		if err != nil {
			return err
		}
		fixed, err := coder.Fixed(name)
		if err != nil {
			return err
		}
		sizeText := fmt.Sprintf(">= %d bytes", size)
		if fixed {
			sizeText = fmt.Sprintf("%d bytes", size)
		}
		fmt.Fprintf(out, "%s  %s  %s  %s\n",
			render(nameStyle, fmt.Sprintf("%-24s", name)),
			render(discStyle, d.String()),
			render(dimStyle, fmt.Sprintf("%-12s", d.Base58())),
			sizeText,
		)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
