// Package permissions 检查自动点击需要的系统权限
//
// 只有 macOS 需要显式授权：辅助功能用于控制鼠标键盘，屏幕录制用于截屏匹配。
package permissions

import (
	"fmt"
	"strings"
)

// Status 权限状态
type Status struct {
	Accessibility   bool `json:"accessibility"`
	ScreenRecording bool `json:"screen_recording"`
}

// Granted 是否所有权限都已授予
func (s Status) Granted() bool {
	return s.Accessibility && s.ScreenRecording
}

// Missing 返回缺少的权限名称
func (s Status) Missing() []string {
	var out []string
	if !s.Accessibility {
		out = append(out, "辅助功能")
	}
	if !s.ScreenRecording {
		out = append(out, "屏幕录制")
	}
	return out
}

// Instructions 缺少权限时的授权说明，全部授予时返回空字符串
func (s Status) Instructions() string {
	if s.Granted() {
		return ""
	}

	var b strings.Builder
	b.WriteString("需要授权以下权限才能正常工作:\n")
	n := 0
	if !s.Accessibility {
		n++
		fmt.Fprintf(&b, "%d. 辅助功能 (点击按钮、发送组合键、监听停止热键)\n", n)
		b.WriteString("   系统设置 > 隐私与安全性 > 辅助功能\n")
	}
	if !s.ScreenRecording {
		n++
		fmt.Fprintf(&b, "%d. 屏幕录制 (截屏查找按钮)\n", n)
		b.WriteString("   系统设置 > 隐私与安全性 > 屏幕录制\n")
	}
	b.WriteString("授权后需要重启终端才能生效。")
	return b.String()
}

// Ensure 检查权限，缺少时返回带说明的错误
func Ensure() error {
	s := Check()
	if s.Granted() {
		return nil
	}
	return fmt.Errorf("缺少权限 %s\n%s", strings.Join(s.Missing(), ", "), s.Instructions())
}
