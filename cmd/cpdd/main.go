// Command cpdd is a content-aware file copier: it mirrors one or more
// source trees into a destination tree, substituting a hard or symbolic
// link to a byte-identical file in a reference tree wherever one exists
// instead of copying the source's bytes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ldebyl/cpdd/internal/cli"
	"github.com/ldebyl/cpdd/internal/dedup"
	"github.com/ldebyl/cpdd/internal/logging"
)

// rootConfiguration holds the raw flag values bound by Cobra.
var rootConfiguration struct {
	refDirs       []string
	hardLink      bool
	symbolicLink  bool
	recursive     bool
	noClobber     bool
	interactive   bool
	preserveShort bool
	preserveList  string
	showStats     bool
	humanReadable bool
	verbose       int
}

var rootCommand = &cobra.Command{
	Use:           "cpdd [OPTIONS] SOURCE... DESTINATION",
	Short:         "Copy files, linking to byte-identical reference content instead of copying it",
	Args:          cobra.MinimumNArgs(2),
	SilenceErrors: true,
	RunE:          rootMain,
}

func init() {
	flags := rootCommand.Flags()
	flags.StringArrayVarP(&rootConfiguration.refDirs, "reference", "r", nil, "add a reference directory for content-based linking (repeatable)")
	flags.BoolVarP(&rootConfiguration.hardLink, "hard-link", "L", false, "force hard-link mode")
	flags.BoolVarP(&rootConfiguration.symbolicLink, "symbolic-link", "s", false, "force symbolic-link mode")
	flags.BoolVarP(&rootConfiguration.recursive, "recursive", "R", false, "descend into directories")
	flags.BoolVarP(&rootConfiguration.noClobber, "no-clobber", "n", false, "never overwrite existing files")
	flags.BoolVarP(&rootConfiguration.interactive, "interactive", "i", false, "prompt before overwrite")
	flags.BoolVarP(&rootConfiguration.preserveShort, "preserve-shorthand", "p", false, "same as --preserve=mode,ownership,timestamps")
	flags.StringVar(&rootConfiguration.preserveList, "preserve", "", "preserve the given attributes (mode,ownership,timestamps,all); no value means all")
	flags.Lookup("preserve").NoOptDefVal = "all"
	flags.BoolVar(&rootConfiguration.showStats, "stats", false, "print statistics on exit")
	flags.BoolVarP(&rootConfiguration.humanReadable, "human-readable", "h", false, "format byte counts with SI suffixes")
	flags.CountVarP(&rootConfiguration.verbose, "verbose", "v", "increase verbosity (repeatable, up to 3)")

	// We take over -h for --human-readable, so --help is registered without
	// a shorthand to avoid colliding with Cobra's default "-h" help binding.
	flags.Bool("help", false, "show this help message")
	rootCommand.SetHelpCommand(&cobra.Command{Hidden: true})

	cobra.EnableCommandSorting = false
}

// rootMain is the entry point for the root command, translating parsed
// flags into dedup.Options and running the walker.
func rootMain(command *cobra.Command, arguments []string) error {
	command.SilenceUsage = true

	opts, err := buildOptions(arguments)
	if err != nil {
		return err
	}

	if rootConfiguration.verbose > 3 {
		rootConfiguration.verbose = 3
		opts.Verbose = 3
	}
	logging.SetVerbose(opts.Verbose)

	status := cli.NewStatusLinePrinter()
	index, err := dedup.BuildRefIndex(opts.RefDirs, opts.Verbose, status)
	if err != nil {
		return err
	}
	status.Clear()

	stats := &dedup.Stats{}
	incomplete := dedup.NewIncompleteRegistry()
	stopSignals := incomplete.HandleSignals()
	defer stopSignals()

	engine := dedup.NewEngine(index, opts.Verbose)
	dispatcher := dedup.NewDispatcher(opts, stats, status, incomplete)
	walker := dedup.NewWalker(opts, engine, dispatcher)

	if err := walker.Run(); err != nil {
		return err
	}
	status.BreakIfNonEmpty()

	if opts.ShowStats {
		fmt.Print(stats.Summary(opts.HumanReadable))
	}

	if walker.Failed() {
		os.Exit(1)
	}
	return nil
}

// buildOptions translates raw Cobra flag values into a validated
// dedup.Options, splitting SOURCE... and DESTINATION from the positional
// arguments.
func buildOptions(arguments []string) (*dedup.Options, error) {
	if rootConfiguration.hardLink && rootConfiguration.symbolicLink {
		return nil, fmt.Errorf("-L/--hard-link and -s/--symbolic-link are mutually exclusive")
	}

	preserve, err := resolvePreserve()
	if err != nil {
		return nil, err
	}

	linkMode := dedup.LinkModeUnset
	switch {
	case rootConfiguration.hardLink:
		linkMode = dedup.LinkModeHard
	case rootConfiguration.symbolicLink:
		linkMode = dedup.LinkModeSymbolic
	}

	opts := &dedup.Options{
		Sources:       arguments[:len(arguments)-1],
		Destination:   arguments[len(arguments)-1],
		RefDirs:       rootConfiguration.refDirs,
		LinkMode:      linkMode,
		Recursive:     rootConfiguration.recursive,
		NoClobber:     rootConfiguration.noClobber,
		Interactive:   rootConfiguration.interactive,
		Preserve:      preserve,
		Verbose:       rootConfiguration.verbose,
		ShowStats:     rootConfiguration.showStats,
		HumanReadable: rootConfiguration.humanReadable,
		Prompter:      cli.NewStdinPrompter(),
	}
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	return opts, nil
}

// resolvePreserve implements the -p / --preserve[=LIST] interaction: -p is
// sugar for the full triple, --preserve with no value also defaults to the
// full triple, and an explicit list is parsed attribute-by-attribute.
func resolvePreserve() (dedup.Preserve, error) {
	if rootConfiguration.preserveShort {
		return dedup.Preserve{Mode: true, Ownership: true, Timestamps: true}, nil
	}
	if !rootCommand.Flags().Changed("preserve") {
		return dedup.Preserve{}, nil
	}
	return dedup.ParsePreserveList(rootConfiguration.preserveList)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		cli.Fatal(err)
	}
}
