//go:build !windows

package auto

// macOS Retina 等情况下 robotgo 输入坐标是逻辑坐标，截图的倍率由
// screen.BuildCaptureMeta 按截图尺寸换算，这里不做缩放
func detectCoords() CoordSpace {
	return Identity
}

// DPIScale 非 Windows 平台返回 1.0
func DPIScale() float64 {
	return 1.0
}
