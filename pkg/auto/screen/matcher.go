package screen

import (
	"errors"
	"fmt"
	"time"

	"github.com/zoeyai/autoclicker/internal/logger"
	"github.com/zoeyai/autoclicker/pkg/auto"
)

// Matcher 基于模板图像的查找和点击
type Matcher struct {
	Locator Locator
	Pointer Pointer
	Clock   auto.Clock
	Log     *logger.Logger
	// Interval 轮询间隔
	Interval time.Duration
	// Recheck 点击后立即再定位一次，元素位置变了就在新位置补点一次
	Recheck bool
	// Snapshots 识别失败时保存截图，nil 表示不保存
	Snapshots *Snapshotter
}

// NewMatcher 创建匹配器，clock/log 为 nil 时使用系统时钟和默认 logger
func NewMatcher(loc Locator, ptr Pointer, clock auto.Clock, log *logger.Logger) *Matcher {
	if clock == nil {
		clock = auto.SystemClock{}
	}
	if log == nil {
		log = logger.Default()
	}
	return &Matcher{
		Locator:  loc,
		Pointer:  ptr,
		Clock:    clock,
		Log:      log,
		Interval: auto.DefaultPollInterval,
	}
}

// FindOnScreen 在 timeout 内轮询定位模板。
//
// 第一次定位立即进行；之后每隔 Interval 一次，最后一次等待截断到截止时间，
// 截止时间之后不再发起定位。定位出错只记录日志，按本次未找到处理。
// 返回 false 时至少已经过去了 timeout
func (m *Matcher) FindOnScreen(template string, confidence float64, timeout time.Duration) (*auto.Point, bool) {
	interval := m.Interval
	if interval <= 0 {
		interval = auto.DefaultPollInterval
	}

	start := m.Clock.Now()
	deadline := start.Add(timeout)
	polls := 0

	for {
		polls++
		p, err := m.Locator.Locate(template, confidence)
		switch {
		case err != nil:
			m.Log.Debug("定位 %s 第 %d 次出错: %v", template, polls, err)
		case p != nil:
			m.Log.LogEvent("find", true, m.Clock.Now().Sub(start),
				fmt.Sprintf("%s @ (%d, %d) 第 %d 次", template, p.X, p.Y, polls))
			return p, true
		}

		remaining := deadline.Sub(m.Clock.Now())
		if remaining <= 0 {
			break
		}
		m.Clock.Sleep(min(interval, remaining))
		if m.Clock.Now().After(deadline) {
			break
		}
	}

	m.Log.LogEvent("find", false, m.Clock.Now().Sub(start),
		fmt.Sprintf("%s 共 %d 次", template, polls))
	return nil, false
}

// ClickOnScreen 定位并点击模板中心，timeout 内没找到返回 ErrButtonNotFound
func (m *Matcher) ClickOnScreen(template string, confidence float64, timeout time.Duration) (auto.Point, error) {
	return m.click(template, confidence, timeout, true)
}

// click save 为 false 时没找到也不保存截图
func (m *Matcher) click(template string, confidence float64, timeout time.Duration, save bool) (auto.Point, error) {
	p, ok := m.FindOnScreen(template, confidence, timeout)
	if !ok {
		if save {
			m.snapshot(template)
		}
		return auto.Point{}, auto.ButtonNotFound(template, timeout.String())
	}

	if err := m.Pointer.Click(*p); err != nil {
		return *p, fmt.Errorf("点击 %s 失败: %w", template, err)
	}
	m.Log.Info("点击 %s @ (%d, %d)", template, p.X, p.Y)

	if !m.Recheck {
		return *p, nil
	}

	// 元素在点击瞬间重绘到别处时，第一次点击会落空
	q, err := m.Locator.Locate(template, confidence)
	if err != nil || q == nil || *q == *p {
		return *p, nil
	}
	m.Log.Warn("%s 点击后位置变为 (%d, %d), 补点一次", template, q.X, q.Y)
	if err := m.Pointer.Click(*q); err != nil {
		return *q, fmt.Errorf("补点 %s 失败: %w", template, err)
	}
	return *q, nil
}

// ClickWithScrollFallback 直接点击；没找到时向下滚动 scrollAmount 一次再试一次。
// 只有滚动后仍未找到才保存截图
func (m *Matcher) ClickWithScrollFallback(template string, scrollAmount int, confidence float64, timeout time.Duration) (auto.Point, error) {
	p, err := m.click(template, confidence, timeout, false)
	if err == nil || !errors.Is(err, auto.ErrButtonNotFound) {
		return p, err
	}

	m.Log.Warn("首次点击 %s 失败, 向下滚动 %d 后重试", template, scrollAmount)
	if err := m.Pointer.Scroll(-scrollAmount); err != nil {
		m.Log.Warn("滚动失败: %v", err)
	}
	return m.ClickOnScreen(template, confidence, timeout)
}

func (m *Matcher) snapshot(template string) {
	if m.Snapshots == nil {
		return
	}
	path, err := m.Snapshots.Save(template, m.Clock.Now())
	if err != nil {
		m.Log.Warn("保存失败截图失败: %v", err)
		return
	}
	m.Log.Info("已保存失败截图: %s", path)
}
