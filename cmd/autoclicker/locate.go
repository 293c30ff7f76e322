package main

import (
	"fmt"
	"time"

	cli "github.com/spf13/cobra"

	"github.com/zoeyai/autoclicker/pkg/auto/input"
	"github.com/zoeyai/autoclicker/pkg/auto/screen"
)

var locateCmd = &cli.Command{
	Use:   "locate <template>",
	Short: "在屏幕上查找模板图像并打印位置和匹配度，用于调试置信度",
	Args:  cli.ExactArgs(1),
	RunE:  locateTemplate,
}

func init() {
	rootCmd.AddCommand(locateCmd)

	locateCmd.Flags().Float64("confidence", 0.8, "匹配置信度阈值")
	locateCmd.Flags().Duration("timeout", 0, "查找超时，0 表示只截屏一次")
	locateCmd.Flags().Bool("rgb", false, "匹配时额外校验颜色")
	locateCmd.Flags().Bool("click", false, "找到后点击")
}

func locateTemplate(cmd *cli.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := setupLogger(cmd, cfg)
	defer log.Close()
	if err != nil {
		return err
	}

	template := args[0]
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	click, _ := cmd.Flags().GetBool("click")

	locator := screen.NewCVLocator()
	defer locator.Close()
	locator.RGB, _ = cmd.Flags().GetBool("rgb")

	mouse := input.NewMouse(nil)
	matcher := screen.NewMatcher(locator, mouse, nil, log)
	matcher.Interval = cfg.PollInterval.Std()
	if cfg.DebugDir != "" {
		matcher.Snapshots = screen.NewSnapshotter(cfg.DebugDir, locator)
	}

	start := time.Now()
	p, ok := matcher.FindOnScreen(template, confidence, timeout)
	score, scored := locator.LastScore(template)
	if !ok {
		if scored {
			return fmt.Errorf("未找到 %s (最高匹配度 %.4f < %.2f)", template, score, confidence)
		}
		return fmt.Errorf("未找到 %s", template)
	}

	fmt.Printf("%s: (%d, %d) 匹配度 %.4f 用时 %s\n", template, p.X, p.Y, score, time.Since(start).Round(time.Millisecond))
	if click {
		return mouse.Click(*p)
	}
	return nil
}
