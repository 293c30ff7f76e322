package main

import (
	"fmt"
	"runtime"

	cli "github.com/spf13/cobra"
)

var versionCmd = &cli.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cli.Command, args []string) {
		fmt.Printf("autoclicker v%s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		fmt.Printf("Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
