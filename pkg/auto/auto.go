// Package auto 提供 UI 自动化功能的共享类型和工具函数。
// 具体功能分布在子包中：screen, input, window。
package auto

import (
	"math"
	"sync"
	"time"
)

// Point 表示二维坐标点
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Region 表示矩形区域
type Region struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Center 返回区域中心点
func (r Region) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Empty 区域是否为空
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// DefaultPollInterval 默认轮询间隔
const DefaultPollInterval = 300 * time.Millisecond

// Clock 时间源，所有轮询循环都通过它取时间和休眠，测试时可替换为假时钟
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock 基于 time 包的真实时钟
type SystemClock struct{}

// Now 当前时间
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep 休眠
func (SystemClock) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// FakeClock 手动推进的时钟，Sleep 只推进时间不阻塞
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	slept  []time.Duration
	onTick func(now time.Time)
}

// NewFakeClock 创建从 start 开始的假时钟
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now 当前时间
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep 推进时间
func (c *FakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	if d > 0 {
		c.now = c.now.Add(d)
	}
	c.slept = append(c.slept, d)
	now, tick := c.now, c.onTick
	c.mu.Unlock()

	if tick != nil {
		tick(now)
	}
}

// Advance 手动推进时间
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// OnSleep 设置每次 Sleep 后的回调（用于在测试中模拟“时间流逝时屏幕发生变化”）
func (c *FakeClock) OnSleep(fn func(now time.Time)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTick = fn
}

// Sleeps 返回所有 Sleep 调用的时长
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.slept))
	copy(out, c.slept)
	return out
}

// ScaleCoord 按比例缩放坐标值
func ScaleCoord(value int, scale float64) int {
	if scale <= 0 {
		return value
	}
	return int(math.Round(float64(value) / scale))
}
