// Command simcollide runs a registered physics sample headless, in the
// terminal or as a websocket stream of debug frames.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/setanarut/simcollide/physics"
	"github.com/setanarut/simcollide/render"
	"github.com/setanarut/simcollide/samples"
	"github.com/setanarut/simcollide/sensor"
)

type config struct {
	test     string
	list     bool
	steps    int
	dt       float64
	workers  int
	view     string
	listen   string
	sound    bool
	stateIn  string
	stateOut string
}

func parseFlags(args []string) (config, error) {
	var c config
	fs := flag.NewFlagSet("simcollide", flag.ContinueOnError)
	fs.StringVar(&c.test, "test", samples.SimCollideBodyVsBodyName, "name of the sample to run")
	fs.BoolVar(&c.list, "list", false, "list the registered samples and exit")
	fs.IntVar(&c.steps, "steps", 900, "number of steps to run, 0 runs until interrupted")
	fs.Float64Var(&c.dt, "dt", 1.0/60.0, "time step in seconds")
	fs.IntVar(&c.workers, "workers", 1, "goroutines running the narrow phase")
	fs.StringVar(&c.view, "view", "none", "viewer: none or term")
	fs.StringVar(&c.listen, "listen", "", "serve debug frames on ws://ADDR/ws")
	fs.BoolVar(&c.sound, "sound", false, "beep when the collision mode changes")
	fs.StringVar(&c.stateIn, "state-in", "", "restore the runner from this state file before stepping")
	fs.StringVar(&c.stateOut, "state-out", "", "save the runner state to this file when done")
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if c.view != "none" && c.view != "term" {
		return c, fmt.Errorf("unknown view %q", c.view)
	}
	if c.dt <= 0 {
		return c, errors.New("dt must be positive")
	}
	return c, nil
}

func main() {
	c, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("[simcollide] %v", err)
	}
	if c.list {
		for _, name := range samples.Names() {
			fmt.Println(name)
		}
		return
	}
	if err := run(c); err != nil {
		log.Fatalf("[simcollide] %v", err)
	}
}

func run(c config) error {
	recorder := render.NewRecorder()
	runner, err := samples.NewRunnerByName(c.test, recorder)
	if err != nil {
		return err
	}
	runner.Space.Workers = c.workers
	log.Printf("[simcollide] %s: %s", c.test, runner.Test.Description())

	if c.stateIn != "" {
		if err := loadState(runner, c.stateIn); err != nil {
			return err
		}
		log.Printf("[simcollide] restored state from %s", c.stateIn)
	}

	var beeper *render.Beeper
	if c.sound {
		beeper = render.NewBeeper()
		if err := beeper.Init(); err != nil {
			return err
		}
		defer beeper.Close()
	}
	if sim, ok := runner.Test.(*samples.SimCollideBodyVsBody); ok {
		sim.OnModeChange = func(mode sensor.Mode) {
			log.Printf("[mode] step %d: %v", runner.Steps(), mode)
			if beeper != nil {
				beeper.Play(mode)
			}
		}
	}

	var stream *render.Stream
	if c.listen != "" {
		stream = render.NewStream()
		defer stream.Close()
		mux := http.NewServeMux()
		mux.Handle("/ws", stream)
		srv := &http.Server{Addr: c.listen, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[stream] %v", err)
			}
		}()
		defer srv.Close()
		log.Printf("[stream] serving frames on ws://%s/ws", c.listen)
	}

	var term *render.Terminal
	var quit <-chan struct{}
	if c.view == "term" {
		term, err = render.NewTerminal(nil)
		if err != nil {
			return err
		}
		defer term.Close()
		// the screen owns stderr now
		log.SetOutput(io.Discard)
		quit = term.Listen()
	}

	// Viewers run in real time, headless runs as fast as it can.
	var tick <-chan time.Time
	if term != nil || stream != nil {
		ticker := time.NewTicker(time.Duration(c.dt * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

loop:
	for c.steps == 0 || runner.Steps() < c.steps {
		if tick != nil {
			select {
			case <-quit:
				break loop
			case <-tick:
			}
		}
		runner.Step(c.dt)
		physics.DrawSpace(recorder, runner.Space, physics.DrawShapes|physics.DrawCollisionPoints)
		frame := recorder.Flush()
		if term != nil {
			term.Resize()
			term.Draw(frame)
		}
		if stream != nil {
			stream.Broadcast(frame)
		}
	}
	log.Printf("[simcollide] stopped after %d steps with %d contacts", runner.Steps(), runner.Space.ContactCount())

	if c.stateOut != "" {
		if err := saveState(runner, c.stateOut); err != nil {
			return err
		}
		log.Printf("[simcollide] saved state to %s", c.stateOut)
	}
	return nil
}

func loadState(runner *samples.Runner, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}
	if err := runner.RestoreState(physics.NewStateRecorderFromBytes(data)); err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}
	return nil
}

func saveState(runner *samples.Runner, path string) error {
	rec := physics.NewStateRecorder()
	runner.SaveState(rec)
	return saveBytes(path, rec.Bytes())
}

func saveBytes(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
