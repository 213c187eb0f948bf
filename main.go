package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"shea/pkg/cli"
	"shea/pkg/config"
	"shea/pkg/disk"
	"shea/pkg/display"
	"shea/pkg/monitor"
)

const (
	exitUsage     = 2
	exitInterrupt = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	res, err := SheaEngine(ctx, os.Args[1:])
	interrupted := ctx.Err() != nil
	stop()

	switch {
	case interrupted || errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled):
		os.Exit(exitInterrupt)
	case cli.IsUsage(err):
		fmt.Fprintf(os.Stderr, "Error: %v\nRun 'shea help' for usage.\n", err)
		os.Exit(exitUsage)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(res.ExitCode)
}

func SheaEngine(ctx context.Context, args []string) (*cli.ExecutionResult, error) {
	// 1. Parse cli.def
	cliEngine, err := cli.MakeEngine()
	if err != nil {
		return nil, fmt.Errorf("INTERNAL ERROR:  parsing CLI definition: %w", err)
	}

	// 2. Parse command line arguments
	pr := cliEngine.Parse(args)

	// 3. Initialize console, setup verbosity
	disp := display.NewConsole()
	defer disp.Close()

	if pr.Invocation != nil && pr.Invocation.Bool("verbose") {
		disp.SetVerbose(true)
	}

	// 4. Report command line problems, help and version
	if pr.Error != nil {
		return nil, pr.Error
	}
	if pr.Help {
		cliEngine.PrintHelp(pr.HelpArgs...)
		return &cli.ExecutionResult{ExitCode: 0}, nil
	}
	if pr.Invocation.Global["version"] == true {
		disp.Print(config.GetBuildInfo() + "\n")
		return &cli.ExecutionResult{ExitCode: 0}, nil
	}

	// 5. Build managers and execute the command
	sysCfg, err := config.Init()
	if err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}
	sysCfg.Freeze()

	prefs, err := config.LoadPreferences(sysCfg)
	if err != nil {
		return nil, err
	}
	disp.Log(fmt.Sprintf("config dir %s, state dir %s", sysCfg.GetConfigDir(), sysCfg.GetStateDir()))

	managers := &cli.Managers{
		Disp:    disp,
		SysCfg:  sysCfg,
		Prefs:   prefs,
		DiskMgr: disk.NewManager(disk.SystemProvider(), cliEngine.Theme),
		TopMgr:  monitor.NewManager(monitor.SystemSource(), cliEngine.Theme),
	}
	cli.RegisterHandlers(cliEngine, managers)

	return cliEngine.Execute(ctx, pr.Invocation)
}
