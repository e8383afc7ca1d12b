package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/setanarut/simcollide/physics"
	"github.com/setanarut/simcollide/samples"
)

func TestParseFlags(t *testing.T) {
	c, err := parseFlags([]string{"-steps", "10", "-workers", "4", "-state-out", "x.bin"})
	if err != nil {
		t.Fatal(err)
	}
	if c.test != samples.SimCollideBodyVsBodyName || c.steps != 10 || c.workers != 4 || c.stateOut != "x.bin" || c.view != "none" {
		t.Errorf("config %+v", c)
	}
	for _, args := range [][]string{{"-view", "gl"}, {"-dt", "0"}} {
		if _, err := parseFlags(args); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestRunSavesAndRestoresState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	if err := run(config{test: samples.SimCollideBodyVsBodyName, steps: 30, dt: 1.0 / 60.0, workers: 2, view: "none", stateOut: path}); err != nil {
		t.Fatal(err)
	}
	runner, err := samples.NewRunnerByName(samples.SimCollideBodyVsBodyName, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := loadState(runner, path); err != nil {
		t.Fatal(err)
	}
	if err := run(config{test: samples.SimCollideBodyVsBodyName, steps: 5, dt: 1.0 / 60.0, view: "none", stateIn: path}); err != nil {
		t.Fatal(err)
	}
}

func TestRunUnknownTest(t *testing.T) {
	if err := run(config{test: "Nope", steps: 1, dt: 0.01, view: "none"}); !errors.Is(err, samples.ErrUnknownTest) {
		t.Errorf("got %v", err)
	}
}

func TestLoadStateErrors(t *testing.T) {
	runner, _ := samples.NewRunnerByName(samples.SimCollideBodyVsBodyName, nil)
	if err := loadState(runner, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected a read error")
	}
	path := filepath.Join(t.TempDir(), "short.bin")
	rec := physics.NewStateRecorder()
	runner.Space.SaveState(rec)
	if err := saveBytes(path, rec.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := loadState(runner, path); !errors.Is(err, physics.ErrStateUnderflow) {
		t.Errorf("got %v", err)
	}
}
