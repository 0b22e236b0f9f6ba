/*
 * agc - Main process.
 */

package main

import (
	"context"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	"github.com/spf13/afero"

	"github.com/agcsim/agc/internal/cpu"
	"github.com/agcsim/agc/internal/harness"
	"github.com/agcsim/agc/internal/iochannel"
	"github.com/agcsim/agc/internal/memory"
	logger "github.com/agcsim/agc/util/logger"
	"github.com/agcsim/agc/util/trace"
)

func main() {
	optRope := getopt.StringLong("rope", 'r', "", "Fixed-memory rope image (yaYUL .bin format)")
	optTicks := getopt.IntLong("ticks", 'n', 12, "Number of time pulses to run")
	optTraceFile := getopt.StringLong("trace", 't', "", "Register trace output file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optLenient := getopt.BoolLong("lenient", 0, "Continue past DesignErrors instead of stopping")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile *os.File
	if *optLogFile != "" {
		var err error
		logFile, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	log := slog.New(logger.NewHandler(logFile, &slog.HandlerOptions{Level: programLevel, AddSource: false}, optDebug))
	slog.SetDefault(log)

	log.Info("agc started")

	var mem *memory.Memory
	if *optRope != "" {
		var err error
		mem, err = memory.LoadRopeFS(afero.NewOsFs(), *optRope)
		if err != nil {
			log.Error("loading rope image", "error", err)
			os.Exit(1)
		}
	} else {
		mem = memory.New()
	}

	io := iochannel.NewBus()
	c := cpu.New(mem, io, log)

	var tr *trace.Writer
	if *optTraceFile != "" {
		f, err := os.Create(*optTraceFile)
		if err != nil {
			log.Error("creating trace file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		tr = trace.NewWriter(f)
	}

	runner := &harness.Runner{CPU: c, Trace: tr, Log: log, Lenient: *optLenient}
	if err := runner.Run(context.Background(), *optTicks); err != nil {
		log.Error("run stopped", "error", err)
		os.Exit(1)
	}

	log.Info("run complete")
}
