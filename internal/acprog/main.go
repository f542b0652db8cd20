// Public domain.

// Package acprog is the main program of the abscal command.
package acprog

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/soniakeys/exit"
	sexa "github.com/soniakeys/sexagesimal"

	"github.com/skysurvey/abscal/atmos"
	"github.com/skysurvey/abscal/calib"
	"github.com/skysurvey/abscal/internal/acsolver"
	"github.com/skysurvey/abscal/memo"
	"github.com/skysurvey/abscal/param"
)

const versionString = "abscal version 0.3 Go source."
const copyrightString = "Public domain."

type commandLine struct {
	fnSeq    string // sequence file
	fnSet    string // calibrator set
	workers  int
	logLevel string
	logJSON  bool
	resid    bool // per-star residual listing
	v        bool
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dh := flag.Bool("h", false, "")
	flag.BoolVar(&cl.v, "v", false, "")
	flag.StringVar(&cl.fnSeq, "s", "", "")
	flag.IntVar(&cl.workers, "j", runtime.GOMAXPROCS(0), "")
	flag.StringVar(&cl.logLevel, "log", "info", "")
	flag.BoolVar(&cl.logJSON, "json", false, "")
	flag.BoolVar(&cl.resid, "r", false, "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: abscal [options] <calibset>    fit calibration to a calibrator set
       abscal -h                      display help
       abscal -v                      display version and copyright

Options:
       -s <sequence-file>   YAML stage sequence (default: built-in)
       -j <workers>         cost-evaluation parallelism
       -log <level>         debug, info, warn, error
       -json                JSON log output
       -r                   list per-star residuals

The calibrator set is a gob file as written by acsim.  Parameter names
accepted in sequence files: ` + strings.Join(param.Names(), " ") + `
`)
	}
	flag.Parse()
	if *dh {
		flag.Usage()
		os.Exit(0)
	}
	if cl.v {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	cl.fnSet = flag.Arg(0)
	return &cl
}

func newLogger(cl *commandLine) *slog.Logger {
	var lvl slog.Level
	switch cl.logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		fmt.Fprintln(os.Stderr, "unknown log level:", cl.logLevel)
		os.Exit(1)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if cl.logJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// Main is the entry point of the abscal command.
func Main() {
	defer exit.Handler()

	cl := parseCommandLine()
	log := newLogger(cl)

	set, err := calib.ReadFile(cl.fnSet)
	if err != nil {
		exit.Log(err)
	}
	stages := defaultStages()
	if cl.fnSeq != "" {
		if stages, err = readSequence(cl.fnSeq); err != nil {
			exit.Log(err)
		}
	}
	log.Info("calibrator set loaded",
		"file", cl.fnSet,
		"stars", len(set.Stars),
		"gridSamples", len(set.Grid),
		"zenithDeg", set.Exposure.ZenithDeg)

	cache := memo.New()
	seq := &acsolver.Sequencer{
		Model:   atmos.New(set.Grid, cache),
		Set:     set,
		Workers: cl.workers,
		Log:     log,
	}
	tbl := param.NewTable()
	state, err := seq.RunSequence(stages, tbl)
	if err != nil {
		exit.Log(err)
	}
	printReport(state, set, cl.resid)
}

func printReport(state *acsolver.State, set *calib.Set, resid bool) {
	fmt.Printf("%-14s %12s %6s %5s %s\n",
		"Stage", "Cost", "Stars", "Clip", "Converged")
	for _, h := range state.History {
		fmt.Printf("%-14s %12.6g %6d %5d %t\n",
			h.Name, h.Cost, len(h.Surviving), h.ClipPasses, h.Converged)
	}

	fmt.Println("\nFitted parameters:")
	for id := param.ID(0); id < param.NumParams; id++ {
		fmt.Printf("  %-10s %12.6g\n", id, state.Table.Get(id))
	}

	if !resid {
		return
	}
	last := state.History[len(state.History)-1]
	fmt.Println("\nPer-star residuals (final stage):")
	for i, star := range last.Surviving {
		c := &set.Stars[star]
		fmt.Printf("  %-10s %.1d %.0d %8.4f\n",
			c.ID, sexa.FmtRA(c.RA), sexa.FmtAngle(c.Dec),
			last.Residuals[i])
	}
}
