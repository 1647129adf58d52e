package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/bradleyjkemp/memviz"
	"github.com/spf13/cobra"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/emu"
)

// Exit codes for --auto.
const (
	exitPass    = 0
	exitFail    = 1
	exitTimeout = 2
)

type options struct {
	steps       int
	trace       bool
	until       string
	auto        bool
	timeout     time.Duration
	traceWindow int
	memviz      string
}

// failRe matches the blargg summary, "Failed 3 tests".
var failRe = regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)

// traceRing keeps the most recent trace lines for a failure report.
type traceRing struct {
	lines []string
	next  int
	full  bool
}

func newTraceRing(n int) *traceRing {
	if n <= 0 {
		return nil
	}
	return &traceRing{lines: make([]string, n)}
}

func (r *traceRing) add(s string) {
	if r == nil {
		return
	}
	r.lines[r.next] = s
	r.next = (r.next + 1) % len(r.lines)
	if r.next == 0 {
		r.full = true
	}
}

// dump writes the lines oldest first.
func (r *traceRing) dump(w io.Writer) {
	if r == nil {
		return
	}
	if r.full {
		for _, s := range r.lines[r.next:] {
			fmt.Fprintln(w, s)
		}
	}
	for _, s := range r.lines[:r.next] {
		fmt.Fprintln(w, s)
	}
}

// result is how a run ended.
type result int

const (
	resultSteps result = iota
	resultUntil
	resultPass
	resultFail
	resultTimeout
	resultError
)

// run executes up to opt.steps instructions of m, streaming serial output to
// out. Trace lines go to traceOut.
func run(m *emu.Machine, opt options, out, traceOut io.Writer) (result, error) {
	var ser bytes.Buffer
	m.SetSerialWriter(io.MultiWriter(out, &ser))

	c, b := m.CPU(), m.Bus()
	ring := newTraceRing(opt.traceWindow)
	start := time.Now()
	var deadline time.Time
	if opt.timeout > 0 {
		deadline = start.Add(opt.timeout)
	}
	until := strings.ToLower(opt.until)

	var cycles int
	done := func(i int, r result) (result, error) {
		fmt.Fprintf(out, "\nDone: steps=%d cycles~=%d elapsed=%s\n", i, cycles, time.Since(start).Truncate(time.Millisecond))
		return r, nil
	}

	tracing := opt.trace || ring != nil
	for i := 0; i < opt.steps; i++ {
		pc := c.PC
		var text string
		if tracing {
			text, _ = cpu.Disassemble(b.Read, pc)
		}
		cyc, err := c.Step()
		if err != nil {
			ring.dump(out)
			return resultError, err
		}
		b.Tick(cyc + b.TakeStall())
		cycles += cyc

		if tracing {
			line := fmt.Sprintf("PC=%04X %-18s cyc=%-2d %s IME=%t IF=%02X IE=%02X",
				pc, text, cyc, c.Registers.String(), c.IME, b.Read(0xFF0F), b.Read(0xFFFF))
			if opt.trace {
				fmt.Fprintln(traceOut, line)
			}
			ring.add(line)
		}

		s := strings.ToLower(ser.String())
		switch {
		case opt.auto && strings.Contains(s, "passed"):
			fmt.Fprintf(out, "\nDetected PASS in serial output.\n")
			return done(i+1, resultPass)
		case opt.auto && failRe.MatchString(s):
			fmt.Fprintf(out, "\nDetected %s in serial output.\n", failRe.FindString(ser.String()))
			if ring != nil {
				fmt.Fprintf(out, "\n--- recent trace ---\n")
				ring.dump(out)
				fmt.Fprintf(out, "--- end trace ---\n")
			}
			return done(i+1, resultFail)
		case !opt.auto && until != "" && strings.Contains(s, until):
			fmt.Fprintf(out, "\nDetected '%s' in serial output.\n", opt.until)
			return done(i+1, resultUntil)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Fprintf(out, "\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
			return done(i+1, resultTimeout)
		}
	}
	return done(opt.steps, resultSteps)
}

func writeMemviz(path string, c *cpu.CPU) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	memviz.Map(f, &c.Registers)
	return nil
}

func main() {
	var opt options
	rootCmd := &cobra.Command{
		Use:          "cpurunner ROM",
		Short:        "Run a test ROM headless with serial output on stdout",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := emu.New(emu.DefaultConfig())
			if err := m.LoadROMFromFile(args[0]); err != nil {
				return err
			}
			res, err := run(m, opt, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if opt.memviz != "" {
				if verr := writeMemviz(opt.memviz, m.CPU()); verr != nil {
					return verr
				}
			}
			if err != nil {
				return err
			}
			switch {
			case opt.auto && res == resultFail:
				os.Exit(exitFail)
			case opt.auto && res == resultTimeout:
				os.Exit(exitTimeout)
			}
			return nil
		},
	}
	f := rootCmd.Flags()
	f.IntVar(&opt.steps, "steps", 5_000_000, "max CPU steps to run")
	f.BoolVar(&opt.trace, "trace", false, "print every instruction to stderr")
	f.StringVar(&opt.until, "until", "Passed", "stop when serial output contains this substring (case-insensitive); empty to disable")
	f.BoolVar(&opt.auto, "auto", false, "detect 'Passed' or 'Failed N tests' in serial output and exit with code 0/1")
	f.DurationVar(&opt.timeout, "timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	f.IntVar(&opt.traceWindow, "trace-window", 0, "recent instructions to print when a run fails")
	f.StringVar(&opt.memviz, "memviz", "", "write a graphviz dot file of the final registers to this path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitPass)
}
