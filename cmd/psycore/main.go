// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/psycore/psycore/config"
	"github.com/psycore/psycore/cpu"
	"github.com/psycore/psycore/emulator"
	"github.com/psycore/psycore/translate"
)

func main() {
	var configFile string
	var annotate string
	var maxTicks int
	var dump bool
	var verbose bool
	var lang string

	flag.StringVar(&configFile, "c", "", "Starlark configuration file")
	flag.StringVar(&annotate, "a", "", "Write an annotated listing to this file")
	flag.IntVar(&maxTicks, "t", 100000, "Maximum ticks to run, 0 for no limit")
	flag.BoolVar(&dump, "dump", false, "Dump core state after the run")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "lang", "", "Message locale, instead of the system locale")

	flag.Parse()

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if len(lang) != 0 {
		translate.Use(lang)
	}
	logrus.WithField("locale", translate.Language()).Debug("psycore")

	if flag.NArg() != 1 {
		logrus.Fatalf("%v: usage: %v [options] program.asm", os.Args[0], os.Args[0])
	}
	source := flag.Arg(0)

	cfg := cpu.DefaultConfig()
	if len(configFile) != 0 {
		var err error
		cfg, err = config.LoadFile(configFile)
		if err != nil {
			logrus.Fatalf("%v: %v", configFile, err)
		}
	}

	inf, err := os.Open(source)
	if err != nil {
		logrus.Fatalf("%v: %v", source, err)
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose, Config: cfg}
	img, diags, err := asm.Parse(inf)
	if err != nil {
		logrus.Fatalf("%v: %v", source, err)
	}
	if len(diags) != 0 {
		logrus.WithField("count", len(diags)).Warnf("%v: load diagnostics", source)
	}

	if len(annotate) != 0 {
		ouf, err := os.Create(annotate)
		if err != nil {
			logrus.Fatalf("%v: %v", annotate, err)
		}
		err = img.Annotate(ouf)
		ouf.Close()
		if err != nil {
			logrus.Fatalf("%v: %v", annotate, err)
		}
	}

	emu, err := emulator.NewEmulator(cfg, img)
	if err != nil {
		logrus.Fatalf("%v: %v", source, err)
	}
	emu.Verbose = verbose

	err = emu.Run(maxTicks)
	if errors.Is(err, emulator.ErrTickLimit) {
		logrus.WithField("ticks", emu.Ticks).Warn("tick limit reached")
	}
	for _, core := range emu.Cores {
		fields := logrus.Fields{
			"core":    core.ID,
			"ticks":   core.Ticks,
			"retired": core.Retired,
			"lost":    core.CyclesLost,
		}
		if trap := core.Trap(); trap != nil {
			logrus.WithFields(fields).Info(trap)
		} else {
			logrus.WithFields(fields).Info("running")
		}
	}

	if dump {
		printer := pp.New()
		printer.SetOutput(os.Stdout)
		printer.SetColoringEnabled(term.IsTerminal(int(os.Stdout.Fd())))
		printer.Println(emu.State())
	}
}
