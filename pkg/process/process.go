// Package process 提供窗口所属进程的查询
package process

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Info 窗口所属进程
type Info struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
	Exe  string `json:"exe,omitempty"`
}

// NameOf 返回进程名（去掉 .exe 后缀），查询失败时返回空串
func NameOf(pid int) string {
	if pid <= 0 {
		return ""
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := proc.Name()
	if err != nil {
		return ""
	}
	return TrimExe(name)
}

// TrimExe 去掉 Windows 可执行文件后缀
func TrimExe(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name[:len(name)-4]
	}
	return name
}

// Lookup 按 PID 查询进程名和可执行文件路径，路径取不到时为空
func Lookup(pid int) (*Info, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("无效的 PID: %d", pid)
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, fmt.Errorf("进程不存在: PID=%d: %w", pid, err)
	}

	name, err := proc.Name()
	if err != nil {
		return nil, fmt.Errorf("读取进程名失败: PID=%d: %w", pid, err)
	}
	exe, _ := proc.Exe()

	return &Info{PID: pid, Name: TrimExe(name), Exe: exe}, nil
}
