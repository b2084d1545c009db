// Command actorrtd is the daemon entrypoint: it resolves configuration,
// sets up logging, builds an internal/runtime.Runtime, bootstraps the
// logger and bootstrap services, and runs the worker/timer/monitor
// goroutine topology until a termination signal arrives. Its flag
// table, app.Before/app.Action split, and signal-driven shutdown are
// grounded directly on cmd/sysbox-fs/main.go.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	systemd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/nodecore/actorrt/internal/config"
	"github.com/nodecore/actorrt/internal/logging"
	"github.com/nodecore/actorrt/internal/runtime"

	_ "github.com/nodecore/actorrt/services/bootstrap"
	_ "github.com/nodecore/actorrt/services/echo"
	_ "github.com/nodecore/actorrt/services/logsvc"
)

var version string // set at build time via -ldflags

const usage = `actorrtd service runtime

actorrtd hosts a fixed-size pool of actor-style services, each with its
own mailbox and message loop, dispatched across a worker goroutine pool
the way skynet dispatches its services across pthreads.
`

func runProfiler(cfg config.Config) interface{ Stop() } {
	if !cfg.Profile {
		return nil
	}
	return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
}

func exitHandler(signalChan chan os.Signal, rt *runtime.Runtime, prof interface{ Stop() }, logFile *os.File) {
	s := <-signalChan
	logrus.Warnf("actorrtd caught signal: %s", s)
	logrus.Info("stopping (gracefully) ...")

	systemd.SdNotify(false, systemd.SdNotifyStopping)

	rt.Shutdown()
	if prof != nil {
		prof.Stop()
	}
	if logFile != nil {
		logFile.Close()
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "actorrtd"
	app.Usage = usage
	app.Version = version

	app.Flags = []cli.Flag{
		cli.UintFlag{Name: "node", Value: 1, Usage: "harbor node id, the high byte of every handle"},
		cli.IntFlag{Name: "thread", Value: 8, Usage: "worker goroutine count"},
		cli.BoolFlag{Name: "profile", Usage: "enable CPU profiling, written to ./cpu.pprof"},
		cli.StringFlag{Name: "cpath", Value: "./services/?.so", Usage: "module search path, ? substituted with the module name"},
		cli.StringFlag{Name: "log-dir", Usage: "directory for LOGON-opened per-service log files"},
		cli.StringFlag{Name: "logservice", Value: "logsvc", Usage: "module name of the logger service"},
		cli.StringFlag{Name: "logservice-arg", Usage: "argument string passed to the logger service"},
		cli.StringFlag{Name: "bootstrap", Value: "bootstrap", Usage: "module name launched after the logger"},
		cli.StringFlag{Name: "bootstrap-arg", Usage: "argument string passed to the bootstrap service"},
		cli.StringFlag{Name: "log", Usage: "process log file path, empty for stderr"},
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warning, error, fatal"},
		cli.StringFlag{Name: "log-format", Value: "text", Usage: "text or json"},
		cli.StringFlag{Name: "config", Usage: "path to a YAML/TOML/JSON config file"},
	}

	var cfg config.Config
	var logFile *os.File

	app.Before = func(ctx *cli.Context) error {
		resolved, err := config.Load(os.Args[1:])
		if err != nil {
			return err
		}
		cfg = resolved

		f, err := logging.Configure(logging.Options{
			File:   cfg.LogFile,
			Format: cfg.LogFormat,
			Level:  cfg.LogLevel,
		})
		if err != nil {
			return err
		}
		logFile = f
		return nil
	}

	app.Action = func(ctx *cli.Context) error {
		logrus.Info("starting actorrtd ...")
		logrus.Infof("node=%d threads=%d bootstrap=%q", cfg.Node, cfg.Threads, cfg.Bootstrap)

		rt := runtime.New(runtime.Config{
			Node:         cfg.Node,
			Threads:      cfg.Threads,
			Profile:      cfg.Profile,
			LogDir:       cfg.LogDir,
			LogService:   cfg.LogService,
			LogArg:       cfg.LogServiceArg,
			Bootstrap:    cfg.Bootstrap,
			BootstrapArg: cfg.BootstrapArg,
		})

		if err := rt.Bootstrap(); err != nil {
			return fmt.Errorf("actorrtd: bootstrap failed: %w", err)
		}

		prof := runProfiler(cfg)

		exitChan := make(chan os.Signal, 1)
		signal.Notify(exitChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		go exitHandler(exitChan, rt, prof, logFile)

		systemd.SdNotify(false, systemd.SdNotifyReady)
		logrus.Info("ready ...")

		if err := rt.Run(); err != nil {
			logrus.Errorf("actorrtd: runtime exited with error: %v", err)
		}

		logrus.Info("done.")
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
