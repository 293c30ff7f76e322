//go:build !windows

package window

import (
	"errors"
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/autoclicker/pkg/auto"
	"github.com/zoeyai/autoclicker/pkg/process"
)

var errNoPID = errors.New("窗口没有关联进程")

// robotgoBackend 基于 robotgo 的窗口系统绑定，按进程枚举窗口，
// 每个进程只能拿到它的主窗口
type robotgoBackend struct{}

// NewBackend 返回当前平台的窗口系统绑定
func NewBackend() Backend {
	return robotgoBackend{}
}

// Windows 枚举有标题的进程主窗口
func (robotgoBackend) Windows() ([]WindowInfo, error) {
	pids, err := robotgo.Pids()
	if err != nil {
		return nil, fmt.Errorf("获取进程列表失败: %w", err)
	}

	activeTitle := robotgo.GetTitle()

	var windows []WindowInfo
	for _, pid := range pids {
		title := robotgo.GetTitle(pid)
		if title == "" {
			continue
		}

		x, y, w, h := robotgo.GetBounds(pid)

		windows = append(windows, WindowInfo{
			PID:       pid,
			Title:     title,
			OwnerName: process.NameOf(pid),
			Bounds:    auto.Coords().RegionToScreen(auto.Region{X: x, Y: y, Width: w, Height: h}),
			Active:    title == activeTitle,
		})
	}
	return windows, nil
}

// ActiveWindow robotgo 只能拿到活动窗口标题，其余信息从枚举结果中补全
func (b robotgoBackend) ActiveWindow() (*WindowInfo, error) {
	title := robotgo.GetTitle()
	if title == "" {
		return nil, nil
	}

	windows, err := b.Windows()
	if err == nil {
		for i := range windows {
			if windows[i].Title == title {
				w := windows[i]
				w.Active = true
				return &w, nil
			}
		}
	}
	return &WindowInfo{Title: title, Active: true}, nil
}

// Restore 还原窗口
func (robotgoBackend) Restore(w WindowInfo) error {
	if w.PID == 0 {
		return errNoPID
	}
	robotgo.MinWindow(w.PID, false)
	return nil
}

// Minimize 最小化窗口
func (robotgoBackend) Minimize(w WindowInfo) error {
	if w.PID == 0 {
		return errNoPID
	}
	robotgo.MinWindow(w.PID)
	return nil
}

// Focus 激活窗口所属进程
func (robotgoBackend) Focus(w WindowInfo) error {
	if w.PID == 0 {
		return errNoPID
	}
	return robotgo.ActivePid(w.PID)
}
