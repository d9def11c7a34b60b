// Package main implements a desktop Chip-8 emulator: a GLFW window and
// OpenGL renderer around the virtual machine in the cpu package, with
// square-wave beep playback and the conventional QWERTY keypad binding.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/retrovm/chip8/cpu"
	"github.com/retrovm/chip8/rom"
)

// ticks per frame trades instruction throughput against real time; the
// timers always step once per frame regardless.
const defaultTicksPerFrame = 7

type options struct {
	romPath  string
	gamesDir string

	scale         int
	ticksPerFrame int

	mute   bool
	strict bool
	debug  bool
	quiet  bool
}

func init() {
	// OpenGL and GLFW calls must all happen on the main thread.
	runtime.LockOSThread()
}

func main() {
	opts := readArguments()
	logger := createLogger(opts)

	if err := run(logger, opts); err != nil {
		logger.Fatal(err.Error())
	}
}

func readArguments() options {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := options{}

	flags.StringVar(&opts.gamesDir, "games", "./c8games", "directory listed when no ROM path is given")
	flags.IntVar(&opts.scale, "scale", 10, "window pixels per Chip-8 pixel")
	flags.IntVar(&opts.ticksPerFrame, "ticks", defaultTicksPerFrame, "instructions executed per 60Hz frame")
	flags.BoolVar(&opts.mute, "mute", false, "disable beep playback")
	flags.BoolVar(&opts.strict, "strict", false, "stop on the first instruction fault instead of skipping it")
	flags.BoolVar(&opts.debug, "debug", false, "enable instruction-level debug logging")
	flags.BoolVar(&opts.quiet, "q", false, "log errors only")
	_ = flags.Parse(os.Args[1:])

	if args := flags.Args(); len(args) > 0 {
		opts.romPath = args[0]
	}
	return opts
}

func createLogger(opts options) *log.Logger {
	cfg := log.DefaultConfig()
	if opts.debug {
		cfg.Level = log.DebugLevel
	} else if opts.quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func run(logger *log.Logger, opts options) error {
	ctx := app.Context()

	path := opts.romPath
	if path == "" {
		var err error
		path, err = rom.Choose(opts.gamesDir, os.Stdin, os.Stdout)
		if err != nil {
			return fmt.Errorf("selecting game: %w", err)
		}
	}

	program, err := rom.Read(path)
	if err != nil {
		return err
	}
	logger.Info("Loaded ROM",
		log.String("file", path),
		log.String("size", fmt.Sprintf("%d bytes", len(program))),
	)

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initializing GLFW: %w", err)
	}
	defer glfw.Terminate()

	window, err := createWindow(opts.scale)
	if err != nil {
		return err
	}
	renderer, err := newRenderer()
	if err != nil {
		return err
	}

	machine := cpu.New(logger)
	if err := machine.Load(program); err != nil {
		return err
	}
	attachKeypad(window, machine, logger)

	if !opts.mute {
		spk, err := newSpeaker()
		if err != nil {
			logger.Warn("Audio unavailable, continuing muted", log.Err(err))
		} else {
			go spk.listen(ctx, machine.Tone())
		}
	}

	frame := time.NewTicker(time.Second / 60)
	defer frame.Stop()

	for !window.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		case <-frame.C:
		}

		glfw.PollEvents()

		for i := 0; i < opts.ticksPerFrame; i++ {
			if err := machine.Tick(); err != nil {
				if opts.strict {
					return fmt.Errorf("instruction fault: %w", err)
				}
				logger.Error("Instruction fault, skipping", log.Err(err))
			}
		}
		machine.TickTimers()

		renderer.render(machine.Display())
		window.SwapBuffers()
	}
	return nil
}

func createWindow(scale int) (*glfw.Window, error) {
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(cpu.DisplayWidth*scale, cpu.DisplayHeight*scale, "Chip-8", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	return window, nil
}
