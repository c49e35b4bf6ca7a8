// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/ezrec/sim68k/cpu"
	"github.com/ezrec/sim68k/emulator"
	"github.com/ezrec/sim68k/internal"
	"github.com/ezrec/sim68k/translate"
)

const (
	optionExecute = "e"
	optionTest    = "t"
	optionQuit    = "q"
)

// logLevel selects the log level from the environment and the command line.
func logLevel(level string, verbose bool) (lvl logrus.Level, err error) {
	lvl = logrus.WarnLevel

	if env, ok := os.LookupEnv("SIM68K_LOG"); ok && len(level) == 0 {
		level = env
	}

	if len(level) != 0 {
		lvl, err = logrus.ParseLevel(level)
		if err != nil {
			return
		}
	}

	if verbose && lvl < logrus.DebugLevel {
		lvl = logrus.DebugLevel
	}

	return
}

func loadImage(path string) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	prog, err = cpu.ParseImage(inf)
	return
}

func assemble(emu *emulator.Emulator, path string) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(inf)
	return
}

func execute(emu *emulator.Emulator, prog *cpu.Program) (err error) {
	emu.Program = prog

	err = emu.Reset()
	if err != nil {
		return
	}

	logrus.Info("start program")
	err = emu.Run()
	logrus.WithField("ticks", emu.Ticks()).Info("end of program")

	return
}

// sizes prints the data sizes of the host.
func sizes(w io.Writer) {
	translate.Fprintf(w, "size of byte  = %d\n", unsafe.Sizeof(byte(0)))
	translate.Fprintf(w, "size of rune  = %d\n", unsafe.Sizeof(rune(0)))
	translate.Fprintf(w, "size of int16 = %d\n", unsafe.Sizeof(int16(0)))
	translate.Fprintf(w, "size of int32 = %d\n", unsafe.Sizeof(int32(0)))
	translate.Fprintf(w, "size of int64 = %d\n", unsafe.Sizeof(int64(0)))
	translate.Fprintf(w, "size of int   = %d\n", unsafe.Sizeof(int(0)))
	t := int32(-1)
	translate.Fprintf(w, "int32 t = 0xFFFFFFFF = %d = %032b\n", t, uint32(t))
}

// menu runs programs by name until the quit option.
func menu(emu *emulator.Emulator) (err error) {
	tape := &emu.Tape

	for {
		var option string
		option, err = tape.Receive(translate.From("Your Option ('%v' to execute a program, '%v' to quit): ", optionExecute, optionQuit))
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if err != nil {
			return
		}

		switch strings.ToLower(option) {
		case optionExecute:
			var name string
			name, err = tape.Receive(translate.From("Name of the 68k binary program ('.68b' will be added automatically): "))
			if err != nil {
				return
			}
			prog, err := loadImage(name + ".68b")
			if err != nil {
				logrus.Errorf("%v.68b: %v", name, err)
				continue
			}
			err = execute(emu, prog)
			if err != nil {
				logrus.Error(err)
			}
		case optionTest:
			sizes(tape.Output)
		case optionQuit:
			translate.Fprintf(tape.Output, "Bye!\n")
			return
		default:
			translate.Fprintf(tape.Output, "Invalid Option. Please enter '%v' or '%v'.\n", optionExecute, optionQuit)
		}
	}
}

func main() {
	var compile string
	var image string
	var save bool
	var input string
	var output string
	var verbose bool
	var level string
	var limit int
	var defines bool

	flag.StringVar(&compile, "c", "", ".s68 file to assemble")
	flag.StringVar(&image, "p", "", ".68b image to load")
	flag.BoolVar(&save, "s", false, "Save assembled image to output, do not execute")
	flag.StringVar(&input, "i", "-", "Console input")
	flag.StringVar(&output, "o", "-", "Console output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&level, "l", "", "Log level (overrides SIM68K_LOG)")
	flag.IntVar(&limit, "n", 0, "Instruction limit, 0 for no limit")
	flag.BoolVar(&defines, "defines", false, "Show assembler predefines")

	flag.Parse()

	if flag.NArg() != 0 {
		logrus.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	lvl, err := logLevel(level, verbose)
	if err != nil {
		logrus.Fatalf("%v: %v", os.Args[0], err)
	}
	logrus.SetLevel(lvl)

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.TickLimit = limit

	if defines {
		for key, value := range internal.IterSeq2Sorted(emu.Defines()) {
			fmt.Printf("%v=%v\n", key, value)
		}
		return
	}

	if input == "-" {
		emu.Tape.Input = os.Stdin
		emu.Tape.Prompt = term.IsTerminal(int(os.Stdin.Fd()))
	} else {
		inf, err := os.Open(input)
		if err != nil {
			logrus.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			logrus.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	var prog *cpu.Program
	switch {
	case len(compile) != 0:
		prog, err = assemble(emu, compile)
		if err != nil {
			logrus.Fatalf("%v: %v", compile, err)
		}
	case len(image) != 0:
		prog, err = loadImage(image)
		if err != nil {
			logrus.Fatalf("%v: %v", image, err)
		}
	default:
		err = menu(emu)
		if err != nil {
			logrus.Fatal(err)
		}
		return
	}

	if save {
		err = prog.WriteImage(emu.Tape.Output)
		if err != nil {
			logrus.Fatalf("%v: %v", output, err)
		}
		return
	}

	err = execute(emu, prog)
	if err != nil {
		logrus.Fatal(err)
	}
}
