package main

import (
	"fmt"
	"os"

	cli "github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zoeyai/autoclicker/pkg/config"
)

var (
	configCmd = &cli.Command{
		Use:   "config",
		Short: "管理配置文件",
	}
	configInitCmd = &cli.Command{
		Use:   "init",
		Short: "写入默认配置",
		RunE:  configInit,
	}
	configShowCmd = &cli.Command{
		Use:   "show",
		Short: "打印生效的配置",
		RunE:  configShow,
	}
	configClearCmd = &cli.Command{
		Use:   "clear",
		Short: "删除配置文件，恢复默认配置",
		RunE: func(cmd *cli.Command, args []string) error {
			m := manager(cmd)
			if err := m.Clear(); err != nil {
				return err
			}
			fmt.Printf("已删除 %s\n", m.GetConfigFile())
			return nil
		},
	}
	configPathCmd = &cli.Command{
		Use:   "path",
		Short: "打印配置文件路径",
		Run: func(cmd *cli.Command, args []string) {
			fmt.Println(manager(cmd).GetConfigFile())
		},
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configClearCmd, configPathCmd)

	configInitCmd.Flags().BoolP("force", "f", false, "覆盖已有配置")
}

func configInit(cmd *cli.Command, args []string) error {
	m := manager(cmd)
	force, _ := cmd.Flags().GetBool("force")
	if m.Exists() && !force {
		return fmt.Errorf("配置文件已存在: %s (使用 --force 覆盖)", m.GetConfigFile())
	}
	if err := m.Save(config.Default()); err != nil {
		return err
	}
	fmt.Printf("配置已保存到 %s\n", m.GetConfigFile())
	return nil
}

func configShow(cmd *cli.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}
