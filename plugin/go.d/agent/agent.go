// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/netdata/puppetdb-plugin/logger"
	"github.com/netdata/puppetdb-plugin/pkg/collectdapi"
	"github.com/netdata/puppetdb-plugin/pkg/netdataapi"
	"github.com/netdata/puppetdb-plugin/pkg/safewriter"
	"github.com/netdata/puppetdb-plugin/pkg/ticker"
	"github.com/netdata/puppetdb-plugin/plugin/go.d/agent/module"

	"github.com/mattn/go-isatty"
)

var isTerminal = isatty.IsTerminal(os.Stdout.Fd())

const (
	OutputNetdata  = "netdata"
	OutputCollectd = "collectd"
)

// Config is an Agent configuration.
type Config struct {
	Name           string
	ConfigPath     string
	ConfDir        []string
	RunModule      string
	Output         string
	MinUpdateEvery int
}

// Agent runs a single collection job and feeds its output to the metrics daemon.
type Agent struct {
	*logger.Logger

	Name           string
	ConfigPath     string
	ConfDir        []string
	RunModule      string
	Output         string
	MinUpdateEvery int
	ModuleRegistry module.Registry
	Out            io.Writer

	exit func(code int)
}

// New creates a new Agent.
func New(cfg Config) *Agent {
	output := cfg.Output
	if output == "" {
		output = OutputNetdata
	}
	return &Agent{
		Logger: logger.New().With(
			slog.String("component", "agent"),
		),
		Name:           cfg.Name,
		ConfigPath:     cfg.ConfigPath,
		ConfDir:        cfg.ConfDir,
		RunModule:      cfg.RunModule,
		Output:         output,
		MinUpdateEvery: cfg.MinUpdateEvery,
		ModuleRegistry: module.DefaultRegistry,
		Out:            safewriter.Stdout,
		exit:           os.Exit,
	}
}

// Run starts the Agent.
func (a *Agent) Run() {
	go a.keepAlive()
	serve(a)
}

func serve(a *Agent) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	var wg sync.WaitGroup

	var exit bool

	for {
		ctx, cancel := context.WithCancel(context.Background())

		wg.Add(1)
		go func() { defer wg.Done(); a.run(ctx) }()

		switch sig := <-ch; sig {
		case syscall.SIGHUP:
			a.Infof("received %s signal (%d). Restarting running instance", sig, sig)
		default:
			a.Infof("received %s signal (%d). Terminating...", sig, sig)
			exit = true
		}

		cancel()

		func() {
			timeout := time.Second * 10
			t := time.NewTimer(timeout)
			defer t.Stop()
			done := make(chan struct{})

			go func() { wg.Wait(); close(done) }()

			select {
			case <-t.C:
				a.Errorf("stopping all goroutines timed out after %s. Exiting...", timeout)
				os.Exit(0)
			case <-done:
			}
		}()

		if exit {
			os.Exit(0)
		}

		time.Sleep(time.Second)
	}
}

func (a *Agent) run(ctx context.Context) {
	a.Info("instance is started")
	defer func() { a.Info("instance is stopped") }()

	job, err := a.newJob()
	if err != nil {
		a.Errorf("job setup: %v", err)
		a.giveUp()
		<-ctx.Done()
		return
	}

	if err := a.autoDetect(ctx, job); err != nil {
		if !errors.Is(err, context.Canceled) {
			a.giveUp()
			<-ctx.Done()
		}
		return
	}

	go job.Start()

	tk := ticker.New(time.Second)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			job.Stop()
			return
		case clock := <-tk.C:
			job.Tick(clock)
		}
	}
}

func (a *Agent) newJob() (*module.Job, error) {
	creator, ok := a.ModuleRegistry.Lookup(a.RunModule)
	if !ok {
		return nil, errors.New("module '" + a.RunModule + "' is not registered")
	}

	mod := creator.Create()

	out := a.Out
	updateEvery := a.updateEvery(creator.Defaults)
	if a.Output == OutputCollectd {
		out = io.Discard
		if v := collectdapi.EnvInterval(); v > 0 {
			updateEvery = v
		}
	}

	job := module.NewJob(module.JobConfig{
		PluginName:      a.Name,
		Name:            a.RunModule,
		ModuleName:      a.RunModule,
		Module:          mod,
		Out:             out,
		UpdateEvery:     updateEvery,
		AutoDetectEvery: creator.AutoDetectionRetry,
		Priority:        creator.Priority,
	})

	if bc, ok := mod.(module.BlockConfigurer); ok {
		data, err := a.readConfigBlock()
		if err != nil {
			return nil, err
		}
		if err := bc.ConfigureBlock(data); err != nil {
			return nil, err
		}
	}

	if a.Output == OutputCollectd {
		ca, ok := mod.(collectdAttacher)
		if !ok {
			return nil, errors.New("module '" + a.RunModule + "' does not support collectd output")
		}
		ca.AttachCollectd(collectdapi.New(a.Out), collectdapi.EnvHostname(), updateEvery)
	}

	return job, nil
}

type collectdAttacher interface {
	AttachCollectd(api *collectdapi.API, host string, interval int)
}

func (a *Agent) autoDetect(ctx context.Context, job *module.Job) error {
	for {
		err := job.AutoDetection()
		if err == nil {
			return nil
		}
		if !job.RetryAutoDetection() {
			return err
		}

		a.Infof("%s[%s] auto-detection failed, will retry in %d second(s)",
			job.ModuleName(), job.Name(), job.AutoDetectionEvery())

		t := time.NewTimer(time.Duration(job.AutoDetectionEvery()) * time.Second)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (a *Agent) updateEvery(def module.Defaults) int {
	v := def.UpdateEvery
	if v <= 0 {
		v = module.UpdateEvery
	}
	if a.MinUpdateEvery > 0 && v < a.MinUpdateEvery {
		v = a.MinUpdateEvery
	}
	return v
}

// giveUp tells the metrics daemon not to restart the plugin.
func (a *Agent) giveUp() {
	if a.Output == OutputCollectd {
		a.exit(1)
		return
	}
	if isTerminal {
		a.exit(0)
		return
	}
	netdataapi.New(a.Out).DISABLE()
}

func (a *Agent) keepAlive() {
	if isTerminal || a.Output != OutputNetdata {
		return
	}

	api := netdataapi.New(a.Out)

	tk := time.NewTicker(time.Second)
	defer tk.Stop()

	var n int
	for range tk.C {
		if err := api.EMPTYLINE(); err != nil {
			a.Infof("keepAlive: %v", err)
			n++
		} else {
			n = 0
		}
		if n == 3 {
			a.Info("too many keepAlive errors. Terminating...")
			a.exit(0)
		}
	}
}
