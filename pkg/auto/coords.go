package auto

import (
	"math"
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/autoclicker/internal/logger"
)

// CoordSpace 截图像素坐标与 robotgo 输入坐标之间的缩放比：
// 截图坐标 = 输入坐标 * Scale。
//
// 匹配结果、窗口边界都在截图坐标系中，只有 robotgo.Move 和区域截图
// 需要换算成输入坐标。
type CoordSpace struct {
	ScaleX float64
	ScaleY float64
}

// Identity 不缩放
var Identity = CoordSpace{ScaleX: 1, ScaleY: 1}

// DetectCoordSpace 由 robotgo 报告的屏幕尺寸和全屏截图尺寸计算缩放比。
// 任一尺寸无效时使用 fallback（一般是 DPI 缩放）
func DetectCoordSpace(reportedW, reportedH, captureW, captureH int, fallback float64) CoordSpace {
	if reportedW <= 0 || reportedH <= 0 {
		return Identity
	}
	if captureW <= 0 || captureH <= 0 {
		s := normalizeScale(fallback)
		return CoordSpace{ScaleX: s, ScaleY: s}
	}
	return CoordSpace{
		ScaleX: normalizeScale(float64(captureW) / float64(reportedW)),
		ScaleY: normalizeScale(float64(captureH) / float64(reportedH)),
	}
}

// normalizeScale 离谱的比例按 1 处理，接近 1 的吸附到 1
func normalizeScale(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0.5 || v > 4.0 {
		return 1.0
	}
	if math.Abs(v-1.0) < 0.05 {
		return 1.0
	}
	return v
}

// ToInput 截图坐标 → 输入坐标
func (c CoordSpace) ToInput(p Point) Point {
	return Point{X: ScaleCoord(p.X, c.ScaleX), Y: ScaleCoord(p.Y, c.ScaleY)}
}

// ToScreen 输入坐标 → 截图坐标
func (c CoordSpace) ToScreen(p Point) Point {
	return Point{X: scaleInt(p.X, c.ScaleX), Y: scaleInt(p.Y, c.ScaleY)}
}

// RegionToInput 截图区域 → 输入区域，非空区域换算后至少 1 像素
func (c CoordSpace) RegionToInput(r Region) Region {
	out := Region{
		X:      ScaleCoord(r.X, c.ScaleX),
		Y:      ScaleCoord(r.Y, c.ScaleY),
		Width:  ScaleCoord(r.Width, c.ScaleX),
		Height: ScaleCoord(r.Height, c.ScaleY),
	}
	if r.Width > 0 && out.Width < 1 {
		out.Width = 1
	}
	if r.Height > 0 && out.Height < 1 {
		out.Height = 1
	}
	return out
}

// RegionToScreen 输入区域 → 截图区域
func (c CoordSpace) RegionToScreen(r Region) Region {
	return Region{
		X:      scaleInt(r.X, c.ScaleX),
		Y:      scaleInt(r.Y, c.ScaleY),
		Width:  scaleInt(r.Width, c.ScaleX),
		Height: scaleInt(r.Height, c.ScaleY),
	}
}

func scaleInt(value int, factor float64) int {
	if factor <= 0 {
		return value
	}
	return int(math.Round(float64(value) * factor))
}

var (
	coordsMu sync.Mutex
	coords   *CoordSpace
)

// Coords 当前进程的坐标空间，首次调用时探测并缓存
func Coords() CoordSpace {
	coordsMu.Lock()
	defer coordsMu.Unlock()

	if coords != nil {
		return *coords
	}
	c := detectCoords()
	coords = &c
	logger.Debug("coords | scale=%.3fx%.3f", c.ScaleX, c.ScaleY)
	return c
}

// PhysicalScreenSize 截图分辨率下的屏幕尺寸
func PhysicalScreenSize() (width, height int) {
	w, h := robotgo.GetScreenSize()
	c := Coords()
	return scaleInt(w, c.ScaleX), scaleInt(h, c.ScaleY)
}
