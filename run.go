package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/profile"
	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sync/errgroup"

	"nescore/emu"
	"nescore/emu/log"
	"nescore/hw"
	"nescore/ines"
	"nescore/ui"
)

func loadConfig(cli CLI) emu.Config {
	path := cli.Config
	if path == "" {
		var err error
		path, err = emu.DefaultConfigPath()
		if err != nil {
			log.ModEmu.WarnZ("no user config directory, using default config").Error("err", err).End()
			return emu.DefaultConfig()
		}
	}

	cfg, err := emu.LoadConfigOrDefault(path)
	checkf(err, "failed to load configuration")

	// --log takes precedence over the configured modules.
	if cli.Log != 0 {
		cli.Log.apply()
	} else if len(cfg.Debug.LogModules) != 0 {
		mask, err := parseLogModules(cfg.Debug.LogModules)
		checkf(err, "invalid log_modules in configuration")
		logModMask(mask).apply()
	}
	return cfg
}

// emuMain runs the emulator with the given rom. The SDL main loop is only
// started when a window is needed.
func emuMain(args Run, cfg emu.Config) {
	if args.Frames != 0 {
		cfg.Emulation.MaxFrames = args.Frames
	}

	if args.Headless {
		checkf(runEmulator(args, cfg), "emulation failed")
		return
	}

	var err error
	sdl.Main(func() {
		err = runEmulator(args, cfg)
	})
	checkf(err, "emulation failed")
}

func runEmulator(args Run, cfg emu.Config) error {
	rom, err := ines.Open(args.RomPath)
	if err != nil {
		return fmt.Errorf("error reading ROM: %w", err)
	}

	var out emu.Output
	if args.Headless {
		out = emu.NewHeadlessOutput()
	} else {
		cfg.Video.Check()
		win, err := ui.NewWindow("nescore", hw.ScreenWidth, hw.ScreenHeight, cfg.Video)
		if err != nil {
			return err
		}
		out = win
	}

	var trace *outfile
	if args.Trace != nil {
		trace = args.Trace
		defer trace.Close()
	}

	emulator, err := emu.Launch(rom, cfg, out, traceWriter(trace))
	if err != nil {
		out.Close()
		return fmt.Errorf("failed to start emulator: %w", err)
	}

	if args.CPUProfile != "" {
		defer profile.Start(
			profile.CPUProfile,
			profile.ProfilePath(args.CPUProfile),
			profile.NoShutdownHook,
		).Stop()
	}

	if err := emulator.Run(); err != nil {
		return err
	}

	if args.Screenshot != "" {
		if err := emu.SaveAsBMP(emulator.NES.PPU.Frame(), args.Screenshot); err != nil {
			return err
		}
	}
	if args.StateOut != "" {
		if err := saveState(emulator.NES, args.StateOut); err != nil {
			return err
		}
	}
	if emulator.Halted() {
		fmt.Fprintf(os.Stderr, "emulation halted on illegal opcode at $%04X\n", emulator.NES.CPU.PC)
	}
	return nil
}

// traceWriter avoids storing a nil *outfile into a non-nil io.Writer.
func traceWriter(f *outfile) io.Writer {
	if f == nil {
		return nil
	}
	return f
}

func saveState(nes *emu.NES, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := nes.WriteState(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// romInfosMain decodes all roms concurrently, then prints their infos in
// order.
func romInfosMain(args RomInfos) {
	infos := make([]string, len(args.RomPaths))

	var g errgroup.Group
	for i, path := range args.RomPaths {
		g.Go(func() error {
			rom, err := ines.Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			infos[i] = fmt.Sprintf("%s: %s", path, rom)
			return nil
		})
	}
	checkf(g.Wait(), "failed to read ROM")

	fmt.Println(strings.Join(infos, "\n"))
}
