//go:build windows

package auto

import (
	"syscall"

	"github.com/go-vgo/robotgo"
)

// DPI 感知进程中 robotgo.GetScreenSize 在不同版本下可能返回物理或逻辑尺寸，
// 而 CaptureImg 始终是物理像素，所以对比两者来判断 robotgo.Move 的坐标空间
var (
	user32DPI            = syscall.NewLazyDLL("user32.dll")
	gdi32DPI             = syscall.NewLazyDLL("gdi32.dll")
	procGetDpiForWindow  = user32DPI.NewProc("GetDpiForWindow")
	procGetDesktopWindow = user32DPI.NewProc("GetDesktopWindow")
	procGetDC            = user32DPI.NewProc("GetDC")
	procReleaseDC        = user32DPI.NewProc("ReleaseDC")
	procGetDeviceCaps    = gdi32DPI.NewProc("GetDeviceCaps")
)

const logpixelsX = 88

func detectCoords() CoordSpace {
	w, h := robotgo.GetScreenSize()
	img, err := robotgo.CaptureImg()
	if err != nil || img == nil {
		return DetectCoordSpace(w, h, 0, 0, DPIScale())
	}
	b := img.Bounds()
	return DetectCoordSpace(w, h, b.Dx(), b.Dy(), DPIScale())
}

// DPIScale 桌面的 DPI 缩放比例，1.0 = 100%，1.5 = 150%
func DPIScale() float64 {
	dpi := 0

	// Windows 10 1607+
	if procGetDpiForWindow.Find() == nil {
		if hwnd, _, _ := procGetDesktopWindow.Call(); hwnd != 0 {
			if d, _, _ := procGetDpiForWindow.Call(hwnd); d > 0 {
				dpi = int(d)
			}
		}
	}

	if dpi == 0 && procGetDC.Find() == nil && procGetDeviceCaps.Find() == nil {
		if dc, _, _ := procGetDC.Call(0); dc != 0 {
			if d, _, _ := procGetDeviceCaps.Call(dc, logpixelsX); d > 0 {
				dpi = int(d)
			}
			procReleaseDC.Call(0, dc)
		}
	}

	if dpi <= 0 {
		return 1.0
	}
	return normalizeScale(float64(dpi) / 96.0)
}
