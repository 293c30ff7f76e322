// autoclicker 在浏览器和 Nexus Mods 应用之间循环点击下载按钮
package main

import (
	"fmt"
	"os"

	cli "github.com/spf13/cobra"

	"github.com/zoeyai/autoclicker/internal/logger"
	"github.com/zoeyai/autoclicker/pkg/config"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cli.Command{
	Use:   "autoclicker",
	Short: "Nexus Mods 下载按钮自动点击",
	Long: `在浏览器和 Nexus Mods 应用之间循环：点击应用里的下载按钮，
等待浏览器弹出页面，再点击页面上的下载按钮并关闭标签页。
按停止热键（默认 ctrl+shift+s）后在当前轮结束时退出。`,
	SilenceUsage: true,
	RunE:         runLoop,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "配置文件路径 (默认 "+config.GetDefaultManager().GetConfigFile()+")")
	flags.String("log-level", "", "日志级别: DEBUG, INFO, WARN, ERROR")
	flags.String("log-file", "", "同时把日志写入文件")
	flags.String("debug-dir", "", "识别失败时保存截图的目录")
	flags.Bool("no-color", false, "关闭控制台颜色")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// manager 按 --config 选择配置管理器
func manager(cmd *cli.Command) *config.Manager {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.GetDefaultManager()
	}
	return config.NewManagerWithFile(path)
}

// loadConfig 加载配置并叠加命令行参数，命令行优先级高于配置文件
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := manager(cmd).Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetString("log-file"); v != "" {
		cfg.LogFile = v
	}
	if v, _ := flags.GetString("debug-dir"); v != "" {
		cfg.DebugDir = v
	}
	return cfg, nil
}

// setupLogger 按配置调整默认 logger
func setupLogger(cmd *cli.Command, cfg *config.Config) (*logger.Logger, error) {
	log := logger.Default()
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		log.SetNoColor(true)
	}
	if cfg.LogFile != "" {
		if err := log.SetFile(cfg.LogFile); err != nil {
			return log, fmt.Errorf("打开日志文件失败: %w", err)
		}
	}
	return log, nil
}
