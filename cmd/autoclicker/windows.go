package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	cli "github.com/spf13/cobra"

	"github.com/zoeyai/autoclicker/pkg/auto/window"
	"github.com/zoeyai/autoclicker/pkg/process"
)

var windowsCmd = &cli.Command{
	Use:   "windows [filter]",
	Short: "列出可见的顶层窗口，用于确认配置中的窗口标题",
	Args:  cli.MaximumNArgs(1),
	RunE:  listWindows,
}

func init() {
	rootCmd.AddCommand(windowsCmd)

	windowsCmd.Flags().Bool("path", false, "显示进程可执行文件路径")
}

func listWindows(cmd *cli.Command, args []string) error {
	filter := ""
	if len(args) == 1 {
		filter = args[0]
	}

	windows, err := window.ListWindows(window.NewBackend(), filter)
	if err != nil {
		return err
	}

	showPath, _ := cmd.Flags().GetBool("path")

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACTIVE\tPID\tPROCESS\tBOUNDS\tTITLE")
	for _, win := range windows {
		active := ""
		if win.Active {
			active = "*"
		}
		b := win.Bounds
		fmt.Fprintf(w, "%s\t%d\t%s\t%d,%d %dx%d\t%s\n",
			active, win.PID, win.OwnerName, b.X, b.Y, b.Width, b.Height, win.Title)
		if showPath {
			if info, err := process.Lookup(win.PID); err == nil && info.Exe != "" {
				fmt.Fprintf(w, "\t\t\t\t  %s\n", info.Exe)
			}
		}
	}
	return w.Flush()
}
