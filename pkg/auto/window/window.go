// Package window 提供窗口查找、激活和焦点断言
//
// 窗口系统本身通过 Backend 接口注入：Windows 上是 Win32 实现，
// 其他平台是 robotgo 实现，测试中是内存假实现。窗口信息从不缓存，
// 每一步都重新查询，因为窗口随时可能移动、关闭或失去焦点。
package window

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zoeyai/autoclicker/internal/logger"
	"github.com/zoeyai/autoclicker/pkg/auto"
)

// WindowInfo 窗口信息
type WindowInfo struct {
	Handle    uintptr     `json:"handle"`
	PID       int         `json:"pid"`
	Title     string      `json:"title"`
	OwnerName string      `json:"owner_name"`
	Bounds    auto.Region `json:"bounds"`
	Minimized bool        `json:"minimized"`
	Active    bool        `json:"active"`
}

func (w WindowInfo) String() string {
	return fmt.Sprintf("%q (pid=%d)", w.Title, w.PID)
}

// Backend 窗口系统绑定
type Backend interface {
	// Windows 枚举所有顶级窗口，顺序由底层决定
	Windows() ([]WindowInfo, error)
	// ActiveWindow 返回当前前台窗口，没有时返回 nil
	ActiveWindow() (*WindowInfo, error)
	// Restore 还原窗口（取消最小化）
	Restore(w WindowInfo) error
	// Minimize 最小化窗口
	Minimize(w WindowInfo) error
	// Focus 请求把窗口置于前台，返回 nil 不代表窗口真的获得了焦点
	Focus(w WindowInfo) error
}

// FindWindow 返回第一个标题包含 partialTitle（不区分大小写）的窗口。
// 多个窗口匹配时选哪一个取决于底层枚举顺序，调用方不应依赖
func FindWindow(b Backend, partialTitle string) (*WindowInfo, error) {
	query := strings.ToLower(partialTitle)
	if query == "" {
		return nil, auto.WindowNotFound(partialTitle, nil)
	}

	windows, err := b.Windows()
	if err != nil {
		return nil, auto.WindowNotFound(partialTitle, err)
	}

	for i := range windows {
		if strings.Contains(strings.ToLower(windows[i].Title), query) {
			w := windows[i]
			return &w, nil
		}
	}
	return nil, auto.WindowNotFound(partialTitle, nil)
}

// ListWindows 列出标题或进程名包含 filter 的窗口，filter 为空时返回全部
func ListWindows(b Backend, filter string) ([]WindowInfo, error) {
	windows, err := b.Windows()
	if err != nil {
		return nil, fmt.Errorf("获取窗口列表失败: %w", err)
	}

	query := strings.ToLower(filter)
	if query == "" {
		return windows, nil
	}

	var out []WindowInfo
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.Title), query) ||
			strings.Contains(strings.ToLower(w.OwnerName), query) {
			out = append(out, w)
		}
	}
	return out, nil
}

// Activator 窗口激活器
type Activator struct {
	backend Backend
	clock   auto.Clock
	log     *logger.Logger
}

// NewActivator 创建窗口激活器，clock/log 为 nil 时使用系统时钟和默认 logger
func NewActivator(b Backend, clock auto.Clock, log *logger.Logger) *Activator {
	if clock == nil {
		clock = auto.SystemClock{}
	}
	if log == nil {
		log = logger.Default()
	}
	return &Activator{backend: b, clock: clock, log: log}
}

// Backend 返回底层窗口系统绑定
func (a *Activator) Backend() Backend {
	return a.backend
}

// Activate 把标题包含 partialTitle 的窗口切到前台。
//
// 后台进程调用 SetForegroundWindow 经常被窗口管理器静默拒绝，所以单次激活
// 不可靠：每次尝试都重新查找窗口、还原、请求焦点并检查结果；焦点没过去时
// 先最小化再还原一次作为补偿，然后再检查。尝试之间等待 delay
func (a *Activator) Activate(partialTitle string, retries int, delay time.Duration) (*WindowInfo, error) {
	if retries < 1 {
		retries = 1
	}

	start := a.clock.Now()
	var lastErr error
	found := false

	for attempt := 1; attempt <= retries; attempt++ {
		if attempt > 1 {
			a.clock.Sleep(delay)
		}

		w, err := FindWindow(a.backend, partialTitle)
		if err != nil {
			lastErr = err
			a.log.Debug("激活 %q 第 %d/%d 次: %v", partialTitle, attempt, retries, err)
			continue
		}
		found = true

		if a.focus(*w) {
			a.log.LogEvent("focus", true, a.clock.Now().Sub(start), fmt.Sprintf("%s 第 %d 次尝试", w, attempt))
			return w, nil
		}

		// 补偿动作：最小化再还原，绕过焦点抢占保护
		a.log.Debug("激活 %s 未生效, 执行最小化-还原补偿", w)
		if err := a.backend.Minimize(*w); err != nil {
			a.log.Warn("最小化 %s 失败: %v", w, err)
		}
		if a.focus(*w) {
			a.log.LogEvent("focus", true, a.clock.Now().Sub(start), fmt.Sprintf("%s 第 %d 次尝试(补偿)", w, attempt))
			return w, nil
		}

		lastErr = auto.WindowNotActive(w.Title, a.activeTitle())
	}

	a.log.LogEvent("focus", false, a.clock.Now().Sub(start), partialTitle)
	if !found {
		return nil, lastErr
	}
	if !errors.Is(lastErr, auto.ErrWindowNotActive) {
		lastErr = auto.WindowNotActive(partialTitle, a.activeTitle())
	}
	return nil, fmt.Errorf("%d 次尝试后仍未激活: %w", retries, lastErr)
}

// focus 还原并请求焦点，返回窗口是否真的成为了活动窗口
func (a *Activator) focus(w WindowInfo) bool {
	if err := a.backend.Restore(w); err != nil {
		a.log.Warn("还原 %s 失败: %v", w, err)
	}
	if err := a.backend.Focus(w); err != nil {
		a.log.Debug("请求焦点 %s 失败: %v", w, err)
	}
	return a.isActive(w)
}

// isActive 当前活动窗口是否就是 w
func (a *Activator) isActive(w WindowInfo) bool {
	active, err := a.backend.ActiveWindow()
	if err != nil || active == nil {
		return false
	}
	if w.Handle != 0 && active.Handle != 0 {
		return active.Handle == w.Handle
	}
	return active.Title == w.Title
}

// activeTitle 当前活动窗口标题，获取失败时返回空串
func (a *Activator) activeTitle() string {
	active, err := a.backend.ActiveWindow()
	if err != nil || active == nil {
		return ""
	}
	return active.Title
}

// AssertActive 轮询直到活动窗口的标题等于 expectedPartialTitle 所指窗口的标题。
// 只检查不切换焦点，用作步骤的后置条件
func (a *Activator) AssertActive(expectedPartialTitle string, retries int, delay time.Duration) error {
	if retries < 1 {
		retries = 1
	}

	start := a.clock.Now()
	var lastErr error

	for attempt := 1; attempt <= retries; attempt++ {
		if attempt > 1 {
			a.clock.Sleep(delay)
		}

		expected, err := FindWindow(a.backend, expectedPartialTitle)
		if err != nil {
			lastErr = err
			continue
		}

		active, err := a.backend.ActiveWindow()
		if err == nil && active != nil && active.Title == expected.Title {
			a.log.LogEvent("assert", true, a.clock.Now().Sub(start), expected.Title)
			return nil
		}

		actual := ""
		if active != nil {
			actual = active.Title
		}
		lastErr = auto.WindowNotActive(expected.Title, actual)
	}

	// 期望窗口始终不存在时返回 ErrWindowNotFound，否则返回 ErrWindowNotActive
	a.log.LogEvent("assert", false, a.clock.Now().Sub(start), lastErr.Error())
	return lastErr
}
