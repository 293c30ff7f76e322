// Package executor 实现自动点击主循环
//
// 一轮流程固定为：激活窗口 A，点掉遮挡元素，激活窗口 B，点击应用按钮，
// 确认焦点切到 A，点击页面按钮并关闭标签页，确认焦点留在最终窗口。
// 任意一步出错都从头重来一轮，连续失败达到上限后退出；每轮开始前检查停止标志。
package executor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zoeyai/autoclicker/internal/logger"
	"github.com/zoeyai/autoclicker/pkg/auto"
	"github.com/zoeyai/autoclicker/pkg/auto/screen"
	"github.com/zoeyai/autoclicker/pkg/auto/window"
	"github.com/zoeyai/autoclicker/pkg/config"
)

// Windows 窗口激活与焦点断言，由 window.Activator 实现
type Windows interface {
	Activate(partialTitle string, retries int, delay time.Duration) (*window.WindowInfo, error)
	AssertActive(expectedPartialTitle string, retries int, delay time.Duration) error
}

// Screen 基于图像的查找和点击，由 screen.Matcher 实现
type Screen interface {
	FindOnScreen(template string, confidence float64, timeout time.Duration) (*auto.Point, bool)
	ClickOnScreen(template string, confidence float64, timeout time.Duration) (auto.Point, error)
	ClickWithScrollFallback(template string, scrollAmount int, confidence float64, timeout time.Duration) (auto.Point, error)
}

// Keys 组合键，由 input.Keyboard 实现
type Keys interface {
	HotKey(keys ...string) error
}

// Stopper 停止标志，由 hotkey.StopFlag 实现
type Stopper interface {
	IsSet() bool
}

// Deps 主循环依赖的外部能力
type Deps struct {
	Windows Windows
	Screen  Screen
	Pointer screen.Pointer
	Keys    Keys
	Stop    Stopper
	Clock   auto.Clock
	Log     *logger.Logger
}

// StepResult 一个步骤的执行结果
type StepResult struct {
	State      State  `json:"state"`
	Status     string `json:"status"` // SUCCESS, FAILED
	DurationMs int64  `json:"durationMs"`

	// 错误信息（仅失败时）
	ErrorMessage  string `json:"errorMessage,omitempty"`
	FailureReason string `json:"failureReason,omitempty"` // WINDOW_NOT_FOUND, WINDOW_NOT_ACTIVE, BUTTON_NOT_FOUND, SYSTEM_ERROR
}

// Status 执行器状态快照
type Status struct {
	State      State
	Retries    int
	Iterations int
	LastError  error
	// Steps 当前轮（或最近一轮）已执行的步骤
	Steps []StepResult
}

// Executor 主循环执行器
type Executor struct {
	cfg  *config.Config
	deps Deps

	mu         sync.Mutex
	state      State
	retries    int
	iterations int
	lastErr    error
	steps      []StepResult
}

// New 创建执行器，Clock/Log 为 nil 时使用系统时钟和默认 logger
func New(cfg *config.Config, deps Deps) *Executor {
	if deps.Clock == nil {
		deps.Clock = auto.SystemClock{}
	}
	if deps.Log == nil {
		deps.Log = logger.Default()
	}
	return &Executor{cfg: cfg, deps: deps, state: StateIdle}
}

// Status 获取执行器状态，可以在其他 goroutine 中调用
func (e *Executor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	steps := make([]StepResult, len(e.steps))
	copy(steps, e.steps)
	return Status{
		State:      e.state,
		Retries:    e.retries,
		Iterations: e.iterations,
		LastError:  e.lastErr,
		Steps:      steps,
	}
}

// Run 运行主循环直到停止或连续失败达到上限。
// 停止时返回 nil；失败时返回包装了最后一个步骤错误的 error
func (e *Executor) Run() error {
	log := e.deps.Log
	limit := e.cfg.RetryLimit

	for {
		if e.deps.Stop != nil && e.deps.Stop.IsSet() {
			e.setState(StateStopped)
			st := e.Status()
			log.Info("已停止, 共完成 %d 轮", st.Iterations)
			return nil
		}

		start := e.deps.Clock.Now()
		err := e.iterate()
		elapsed := e.deps.Clock.Now().Sub(start)

		if err == nil {
			e.mu.Lock()
			e.retries = 0
			e.iterations++
			n := e.iterations
			e.mu.Unlock()

			log.LogEvent("loop", true, elapsed, fmt.Sprintf("第 %d 轮完成", n))
			e.deps.Clock.Sleep(e.cfg.IterationPause.Std())
			continue
		}

		e.mu.Lock()
		e.retries++
		e.lastErr = err
		retries := e.retries
		e.mu.Unlock()

		log.LogEvent("loop", false, elapsed, err.Error())
		if !auto.IsRetryable(err) {
			log.Warn("非预期错误 (%s), 同样计入重试次数", FailureReason(err))
		}
		if retries >= limit {
			e.setState(StateFailed)
			log.Error("已达到最大重试次数 %d, 停止", limit)
			return fmt.Errorf("连续失败 %d 次: %w", retries, err)
		}

		log.Warn("重试中... (%d/%d)", retries, limit)
		e.deps.Clock.Sleep(e.cfg.RetryPause.Std())
	}
}

func (e *Executor) setState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

// step 执行一个步骤并记录结果，错误带上步骤名
func (e *Executor) step(s State, fn func() error) error {
	e.setState(s)
	start := e.deps.Clock.Now()

	err := safeCall(fn)

	result := StepResult{
		State:      s,
		Status:     "SUCCESS",
		DurationMs: e.deps.Clock.Now().Sub(start).Milliseconds(),
	}
	if err != nil {
		err = fmt.Errorf("%s: %w", s, err)
		result.Status = "FAILED"
		result.ErrorMessage = err.Error()
		result.FailureReason = FailureReason(err)
	}

	e.mu.Lock()
	e.steps = append(e.steps, result)
	e.mu.Unlock()

	e.deps.Log.Debug("步骤 %s %s (%dms)", s, result.Status, result.DurationMs)
	return err
}

// safeCall 把步骤中的 panic 转为普通错误，计入重试次数
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("步骤异常: %v", r)
		}
	}()
	return fn()
}

// FailureReason 按错误分类返回失败原因
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auto.ErrWindowNotFound):
		return "WINDOW_NOT_FOUND"
	case errors.Is(err, auto.ErrWindowNotActive):
		return "WINDOW_NOT_ACTIVE"
	case errors.Is(err, auto.ErrButtonNotFound):
		return "BUTTON_NOT_FOUND"
	default:
		return "SYSTEM_ERROR"
	}
}
