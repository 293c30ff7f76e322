package main

import (
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/cobra"

	"github.com/zoeyai/autoclicker/pkg/auto/input"
	"github.com/zoeyai/autoclicker/pkg/auto/screen"
	"github.com/zoeyai/autoclicker/pkg/auto/window"
	"github.com/zoeyai/autoclicker/pkg/executor"
	"github.com/zoeyai/autoclicker/pkg/hotkey"
	"github.com/zoeyai/autoclicker/pkg/permissions"
)

var runCmd = &cli.Command{
	Use:   "run",
	Short: "运行自动点击主循环 (默认命令)",
	RunE:  runLoop,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.Flags().Bool("rgb", false, "匹配时额外校验颜色")
	runCmd.Flags().Bool("rgb", false, "匹配时额外校验颜色")
}

func runLoop(cmd *cli.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := setupLogger(cmd, cfg)
	defer log.Close()
	if err != nil {
		return err
	}

	if err := permissions.Ensure(); err != nil {
		permissions.OpenSettings(permissions.Check())
		return err
	}

	locator := screen.NewCVLocator()
	defer locator.Close()
	locator.RGB, _ = cmd.Flags().GetBool("rgb")

	mouse := input.NewMouse(nil)
	matcher := screen.NewMatcher(locator, mouse, nil, log)
	matcher.Interval = cfg.PollInterval.Std()
	matcher.Recheck = cfg.Recheck
	if cfg.DebugDir != "" {
		matcher.Snapshots = screen.NewSnapshotter(cfg.DebugDir, locator)
	}

	var stop hotkey.StopFlag
	listener, err := hotkey.NewListener(cfg.StopHotkey, &stop, log)
	if err != nil {
		return err
	}
	if err := listener.Start(); err != nil {
		return err
	}
	defer listener.Stop()

	// Ctrl+C 与停止热键效果相同
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok && stop.Set() {
			log.Info("收到中断信号, 当前轮结束后停止")
		}
	}()

	exec := executor.New(cfg, executor.Deps{
		Windows: window.NewActivator(window.NewBackend(), nil, log),
		Screen:  matcher,
		Pointer: mouse,
		Keys:    input.NewKeyboard(),
		Stop:    &stop,
		Log:     log,
	})

	log.Info("开始运行: %s <-> %s, 按 %s 停止", cfg.WindowA, cfg.WindowB, listener.Combo())

	// 主循环在工作 goroutine 中运行，主 goroutine 只等待结果
	done := make(chan error, 1)
	go func() {
		done <- exec.Run()
	}()
	return <-done
}
