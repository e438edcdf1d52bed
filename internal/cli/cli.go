// Package cli provides the wzarchive command-line interface with injectable
// io.Writer for testing.
package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/Cleptomanis/warzone2100/mapio"
	"github.com/Cleptomanis/warzone2100/mapio/stdio"
	"github.com/Cleptomanis/warzone2100/mapio/zipio"
)

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)
	Config  *Config   // Loaded settings (nil means load from disk)

	// Exit function for testability (defaults to os.Exit)
	Exit func(code int)

	// Color functions (can be disabled for testing)
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Version: version,
		Args:    os.Args,
		Exit:    os.Exit,
		green:   color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		gray:    color.New(color.FgHiBlack).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, captured
// output, defaults instead of the on-disk config).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	return &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
		Config:  DefaultConfig(),
		Exit:    func(int) {},
		green:   noColor,
		yellow:  noColor,
		cyan:    noColor,
		gray:    noColor,
		red:     noColor,
	}
}

func (c *CLI) config() *Config {
	if c.Config != nil {
		return c.Config
	}
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		cfg = DefaultConfig()
	}
	c.Config = cfg
	return cfg
}

// Run executes the CLI with the configured arguments.
func (c *CLI) Run() {
	if len(c.Args) < 2 {
		c.PrintUsage()
		return
	}

	switch c.Args[1] {
	case "list":
		c.ListEntries()
	case "extract":
		c.Extract()
	case "create":
		c.Create()
	case "init":
		c.InitConfig()
	case "version", "-v", "--version":
		fmt.Fprintf(c.Out, "wzarchive v%s\n", c.Version)
	case "help", "-h", "--help":
		c.PrintUsage()
	default:
		fmt.Fprintf(c.Err, "Unknown command: %s\n", c.Args[1])
		c.PrintUsage()
		c.Exit(1)
	}
}

// PrintUsage prints the help message.
func (c *CLI) PrintUsage() {
	fmt.Fprintln(c.Out, `wzarchive - map archive tool

Usage:
  wzarchive list <archive>                 List files and folders in an archive
  wzarchive extract <archive> [dest]       Extract all files to a directory (default .)
  wzarchive create <archive> <srcdir>      Build an archive from a directory tree
  wzarchive init                           Create default config file
  wzarchive version, -v                    Show version
  wzarchive help, -h                       Show this help

Config: ~/.wzarchive/config.yaml`)
}

// InitConfig creates the default config file.
func (c *CLI) InitConfig() {
	cfg := DefaultConfig()
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(c.Err, "Error saving config: %v\n", err)
		c.Exit(1)
		return
	}
	fmt.Fprintf(c.Out, "Created config at %s\n", ConfigPath())
}

// ListEntries lists an archive's folders and files.
func (c *CLI) ListEntries() {
	if len(c.Args) < 3 {
		fmt.Fprintln(c.Out, "Usage: wzarchive list <archive>")
		c.Exit(1)
		return
	}

	archive, err := zipio.OpenFile(c.Args[2], zipio.WithReadOnly())
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	defer archive.Close()

	folders := 0
	archive.EnumerateFoldersRecursive("", func(name string) bool {
		fmt.Fprintf(c.Out, "  %s\n", c.cyan(name))
		folders++
		return true
	})
	files := 0
	archive.EnumerateFilesRecursive("", func(name string) bool {
		fmt.Fprintf(c.Out, "  %s\n", name)
		files++
		return true
	})

	fmt.Fprintf(c.Out, "%d files, %d folders\n", files, folders)
}

// Extract extracts every file of an archive into a destination directory,
// reading entries concurrently.
func (c *CLI) Extract() {
	if len(c.Args) < 3 {
		fmt.Fprintln(c.Out, "Usage: wzarchive extract <archive> [dest]")
		c.Exit(1)
		return
	}
	dest := "."
	if len(c.Args) > 3 {
		dest = c.Args[3]
	}
	cfg := c.config()

	archive, err := zipio.OpenFile(c.Args[2], zipio.WithReadOnly())
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	defer archive.Close()

	// The enumeration pass settles the archive's name classification, so
	// the workers below only perform reads.
	var names []string
	archive.EnumerateFilesRecursive("", func(name string) bool {
		names = append(names, name)
		return true
	})

	out := stdio.NewLocal(dest)
	var eg errgroup.Group
	eg.SetLimit(cfg.ExtractWorkers)

	var mu sync.Mutex
	extracted := 0

	for _, name := range names {
		name := name
		eg.Go(func() error {
			data, result := archive.LoadFullFile(name, cfg.MaxFileSize, false)
			if result != mapio.LoadSuccess {
				return fmt.Errorf("read %s: %s", name, result)
			}
			if !out.WriteFullFile(name, data) {
				return fmt.Errorf("write %s", name)
			}
			mu.Lock()
			extracted++
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		fmt.Fprintf(c.Err, "%s %v\n", c.red("x"), err)
		c.Exit(1)
		return
	}
	fmt.Fprintf(c.Out, "%s Extracted %s files to %s\n",
		c.green("*"), c.yellow(fmt.Sprintf("%d", extracted)), dest)
}

// Create builds a new archive from the files beneath a source directory.
func (c *CLI) Create() {
	if len(c.Args) < 4 {
		fmt.Fprintln(c.Out, "Usage: wzarchive create <archive> <srcdir>")
		c.Exit(1)
		return
	}
	path, srcDir := c.Args[2], c.Args[3]
	cfg := c.config()

	var opts []zipio.Option
	if cfg.FixedTimestamps {
		opts = append(opts, zipio.WithFixedLastMod())
	}
	archive, err := zipio.CreateFile(path, opts...)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	src := stdio.NewLocal(srcDir)
	var names []string
	src.EnumerateFilesRecursive("", func(name string) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)

	added := 0
	var failed []string
	for _, name := range names {
		data, result := src.LoadFullFile(name, cfg.MaxFileSize, false)
		if result != mapio.LoadSuccess {
			failed = append(failed, name)
			fmt.Fprintf(c.Out, "  %s %s %s\n", c.red("x"), name, c.gray("("+result.String()+")"))
			continue
		}
		if !archive.WriteFullFile(name, data) {
			failed = append(failed, name)
			fmt.Fprintf(c.Out, "  %s %s\n", c.red("x"), name)
			continue
		}
		fmt.Fprintf(c.Out, "  %s %s\n", c.green("*"), name)
		added++
	}

	if err := archive.Close(); err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	fmt.Fprintf(c.Out, "Done: %s added", c.green(fmt.Sprintf("%d", added)))
	if len(failed) > 0 {
		fmt.Fprintf(c.Out, ", %s failed (%s)",
			c.red(fmt.Sprintf("%d", len(failed))), strings.Join(failed, ", "))
	}
	fmt.Fprintln(c.Out)
	if added == 0 {
		fmt.Fprintf(c.Out, "%s Nothing to archive; %s was not written\n", c.yellow("!"), path)
	}
}
