// Package input 提供基于 robotgo 的鼠标和键盘操作
//
// 坐标都是截图坐标系（物理像素），在发送输入事件前统一转换到
// 输入坐标系，两者在 Windows 高 DPI 下不一致。
package input

import (
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/autoclicker/pkg/auto"
)

// DefaultSettle 移动鼠标后到按下按键之间的等待，确保事件按顺序到达目标窗口
const DefaultSettle = 50 * time.Millisecond

// Mouse 系统鼠标
type Mouse struct {
	// Settle 移动后点击前的等待
	Settle time.Duration
	clock  auto.Clock
}

// NewMouse 创建系统鼠标，clock 为 nil 时使用系统时钟
func NewMouse(clock auto.Clock) *Mouse {
	if clock == nil {
		clock = auto.SystemClock{}
	}
	return &Mouse{Settle: DefaultSettle, clock: clock}
}

// Move 移动鼠标到 p
func (m *Mouse) Move(p auto.Point) error {
	MoveTo(p.X, p.Y)
	return nil
}

// Click 在 p 处左键单击
func (m *Mouse) Click(p auto.Point) error {
	MoveTo(p.X, p.Y)
	m.clock.Sleep(m.Settle)
	robotgo.Click("left", false)
	return nil
}

// Scroll 在鼠标当前位置滚动，正数向上，负数向下，单位为滚轮原始增量
func (m *Mouse) Scroll(amount int) error {
	if amount == 0 {
		return nil
	}
	robotgo.Scroll(0, amount)
	return nil
}

// MoveTo 移动鼠标到指定位置
func MoveTo(x, y int) {
	p := auto.Coords().ToInput(auto.Point{X: x, Y: y})
	robotgo.Move(p.X, p.Y)
}
