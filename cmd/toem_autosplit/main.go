package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"memsplit/autosplitter"
	"memsplit/config"
	"memsplit/runlog"
	"memsplit/timer"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.ProcessName, "process", cfg.ProcessName, "Name of the game process")
	flag.StringVar(&cfg.RunLogPath, "runlog", cfg.RunLogPath, "SQLite file recording every run (empty disables)")
	flag.BoolVar(&cfg.RegionBySignature, "region-by-signature", cfg.RegionBySignature, "Locate the current region by code signature")
	flag.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "Interval between game state reads")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	log := logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "toem"))

	dispatcher := timer.NewDispatcher()
	dispatcher.Register(timer.NewLogHandler())

	if cfg.RunLogPath != "" {
		store, err := runlog.Open(cfg.RunLogPath)
		if err != nil {
			fmt.Printf("Error opening run log: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		dispatcher.Register(store)
		log.Infoln("Recording runs to", cfg.RunLogPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := autosplitter.New(cfg, opener, dispatcher)

	log.Infoln("Type a timer event (reset, pause, resume, start, split, undo_split, skip_split) to send it to the timer")
	hostEvents := make(chan timer.Event)
	go readHostEvents(ctx, dispatcher, hostEvents, log)

	if err := a.Run(ctx, hostEvents); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("autosplitter stopped: ", err)
	}
}

// readHostEvents treats stdin as the timer's own controls. Each event is sent to the timer and
// then reported to the speedrun so it can follow along.
func readHostEvents(ctx context.Context, t timer.Timer, out chan<- timer.Event, log *logger.Logger) {
	defer close(out)

	lines := bufio.NewScanner(os.Stdin)
	for lines.Scan() {
		if lines.Text() == "" {
			continue
		}
		e, err := timer.ParseEvent(lines.Text())
		if err != nil {
			log.Warn(err)
			continue
		}

		t.Trigger(e)
		select {
		case out <- e:
		case <-ctx.Done():
			return
		}
	}
}
