package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"nescore/emu/log"
)

type mode byte

const (
	runMode      mode = iota // Run a ROM
	romInfosMode             // Show ROM infos
	versionMode              // Show version
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run ROM in emulator."`
		RomInfos RomInfos `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		Version  Version  `cmd:"" help:"Show nescore version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `name:"config" help:"${config_help}" type:"path"`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"Path to the iNES ROM." required:"true" type:"existingfile"`

		Frames     uint64   `name:"frames" help:"Stop after that many frames (0: no limit, overrides config)."`
		Headless   bool     `name:"headless" help:"Don't open a window."`
		CPUProfile string   `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Trace      *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		Screenshot string   `name:"screenshot" help:"Save the last frame as BMP." type:"path"`
		StateOut   string   `name:"state-out" help:"Save the machine state as JSON on exit." type:"path"`
	}

	RomInfos struct {
		RomPaths []string `arg:"" name:"/path/to/rom" type:"existingfile"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"cpuprofile_help": "Write CPU profile to directory.",
	"log_help":        "Enable logging for specified modules.",
	"config_help":     "Configuration file (default: user config dir).",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("nescore"),
		kong.Description("NES emulator core."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")

	switch cmd := ctx.Command(); {
	case strings.HasPrefix(cmd, "rom-infos"):
		cfg.mode = romInfosMode
	case cmd == "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	var tok string
	if err := ctx.Scan.PopValueInto("log", &tok); err != nil {
		return err
	}
	mask, err := parseLogModules(strings.Split(tok, ","))
	if err != nil {
		return err
	}
	*lm = logModMask(mask)
	return nil
}

// apply enables debug logs for the modules in the mask. The 'no' value
// disables logging entirely.
func (lm logModMask) apply() {
	if lm == logModMask(nologMask) {
		log.Disable()
		return
	}
	log.EnableDebugModules(log.ModuleMask(lm))
}

// nologMask marks the 'no' special value. Bit 0 isn't used by any module.
const nologMask log.ModuleMask = 1

// parseLogModules converts module names, 'all' or 'no', into a module mask.
func parseLogModules(names []string) (log.ModuleMask, error) {
	var (
		mask    log.ModuleMask
		nolog   bool
		allLogs bool
	)
	for _, v := range names {
		switch v {
		case "":
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return 0, fmt.Errorf("unknown log module %s", v)
			}
			mask |= mod.Mask()
		}
	}

	if nolog {
		if allLogs {
			return 0, fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return 0, fmt.Errorf("cannot combine 'no' with other log modules")
		}
		return nologMask, nil
	}

	if allLogs {
		mask = log.ModuleMaskAll &^ nologMask
	}
	return mask, nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	if err := ctx.Scan.PopValueInto("trace", &f.name); err != nil {
		return err
	}
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf("%s", checkMessage(err, format, args...))
}

// checkMessage formats the context message, followed by err on its own line.
func checkMessage(err error, format string, args ...any) string {
	return fmt.Sprintf(format+".\n%v", append(args, err)...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
