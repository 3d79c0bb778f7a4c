// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"iter"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/psycore/psycore/cpu"
	"github.com/psycore/psycore/memory"
)

// Emulator state. N cores running one image, in lock-step ticks.
type Emulator struct {
	Verbose bool // If set, enables verbose logging.

	Config cpu.Config      // Simulator configuration.
	Image  *cpu.Image      // Program image, shared by all cores.
	Domain *cpu.Domain     // Synchronization domain, shared by all cores.
	Cores  []*cpu.Cpu      // Cores, indexed by core id.
	Memory []memory.Memory // Data memories; a single entry if shared.

	Ticks int // Ticks since the last reset.
}

// NewEmulator creates an emulator for an image. Configuration and
// synchronization problems are reported here, before any tick.
func NewEmulator(cfg cpu.Config, img *cpu.Image) (emu *Emulator, err error) {
	err = cfg.Validate()
	if err != nil {
		return
	}

	if img.Size() != uint32(cfg.InstructionMemSize) {
		err = errors.Join(cpu.ErrConfigInvalid, cpu.ErrConfigKey("instructionMemSize"))
		return
	}

	dom := cpu.NewDomain(cfg.Cores, cfg.LockCount, cfg.BarrierCount)

	err = img.CheckSync(dom)
	if err != nil {
		return
	}

	emu = &Emulator{
		Config: cfg,
		Image:  img,
		Domain: dom,
	}

	if cfg.SharedMemory {
		emu.Memory = []memory.Memory{memory.NewRam(cfg.DataMemSize)}
	}

	for id := range cfg.Cores {
		var mem memory.Memory
		if cfg.SharedMemory {
			mem = emu.Memory[0]
		} else {
			mem = memory.NewRam(cfg.DataMemSize)
			emu.Memory = append(emu.Memory, mem)
		}

		err = dom.Join(id)
		if err != nil {
			emu = nil
			return
		}

		emu.Cores = append(emu.Cores, cpu.NewCpu(id, cfg, img, mem, dom))
	}

	err = dom.Ready()
	if err != nil {
		emu = nil
		return
	}

	err = emu.Reset()
	if err != nil {
		emu = nil
		return
	}

	return
}

// Reset every core, and reload data memory from the image.
// Core statistics are kept.
func (emu *Emulator) Reset() (err error) {
	for _, mem := range emu.Memory {
		mem.Reset()
		err = emu.Image.LoadData(mem)
		if err != nil {
			return
		}
	}

	for _, core := range emu.Cores {
		core.Reset()
	}

	emu.Ticks = 0

	return
}

// LineNo returns the source line of the instruction a core is executing.
func (emu *Emulator) LineNo(core int) int {
	return emu.Image.LineNo(emu.Cores[core].PC)
}

// Running iterates over the cores that are not trapped.
func (emu *Emulator) Running() iter.Seq2[int, *cpu.Cpu] {
	return func(yield func(id int, core *cpu.Cpu) bool) {
		for id, core := range emu.Cores {
			if core.Trapped() {
				continue
			}
			if !yield(id, core) {
				return
			}
		}
	}
}

// Done returns true once every core has trapped.
func (emu *Emulator) Done() bool {
	for range emu.Running() {
		return false
	}
	return true
}

// step steps one core, and wraps any error with its location.
func (emu *Emulator) step(id int, core *cpu.Cpu) (err error) {
	lineno := emu.LineNo(id)

	err = core.Step()
	if err != nil {
		err = &ErrRuntime{Core: id, LineNo: lineno, Err: err}
	}

	return
}

// Tick steps every running core once, in ascending core id, then
// commits the synchronization domain. In parallel mode the cores step
// concurrently, and are joined before the commit.
//
// Errors from cores that trapped during this tick are returned joined.
// done is set once every core has trapped.
func (emu *Emulator) Tick() (done bool, err error) {
	errs := make([]error, len(emu.Cores))

	if emu.Config.Parallel {
		var group errgroup.Group
		group.SetLimit(runtime.GOMAXPROCS(0))
		for id, core := range emu.Running() {
			core.Verbose = emu.Verbose
			group.Go(func() error {
				errs[id] = emu.step(id, core)
				return nil
			})
		}
		_ = group.Wait()
	} else {
		for id, core := range emu.Running() {
			core.Verbose = emu.Verbose
			errs[id] = emu.step(id, core)
		}
	}

	emu.Domain.Commit()
	emu.Ticks++

	err = errors.Join(errs...)
	if err != nil && emu.Verbose {
		logrus.WithFields(logrus.Fields{"tick": emu.Ticks}).Debug(err)
	}

	done = emu.Done()
	return
}

// Run ticks until every core has trapped, or maxTicks have passed.
// A maxTicks of zero or less does not limit the run. Every core error
// seen is returned, joined; ErrTickLimit is included if the limit was hit.
func (emu *Emulator) Run(maxTicks int) (err error) {
	var errs []error

	for ticks := 0; maxTicks <= 0 || ticks < maxTicks; ticks++ {
		done, tickErr := emu.Tick()
		if tickErr != nil {
			errs = append(errs, tickErr)
		}
		if done {
			err = errors.Join(errs...)
			return
		}
	}

	errs = append(errs, ErrTickLimit)
	err = errors.Join(errs...)
	return
}

// State returns a snapshot of every core.
func (emu *Emulator) State() (states []cpu.State) {
	for _, core := range emu.Cores {
		states = append(states, core.State())
	}
	return
}
