// Package screen 提供截图、模板定位和基于图像的点击
package screen

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"gocv.io/x/gocv"

	"github.com/zoeyai/autoclicker/pkg/auto"
	"github.com/zoeyai/autoclicker/pkg/vision/cv"
)

// CaptureScreen 截取全屏
func CaptureScreen() (image.Image, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("截屏失败: %w", err)
	}
	return img, nil
}

// CaptureRegion 截取屏幕区域（截图坐标系）
func CaptureRegion(r auto.Region) (image.Image, error) {
	in := auto.Coords().RegionToInput(r)
	img, err := robotgo.CaptureImg(in.X, in.Y, in.Width, in.Height)
	if err != nil {
		return nil, fmt.Errorf("截取区域失败: %w", err)
	}
	return img, nil
}

// Capture region 为 nil 时截取全屏
func Capture(region *auto.Region) (image.Image, error) {
	if region == nil {
		return CaptureScreen()
	}
	return CaptureRegion(*region)
}

// GetScreenSize 获取屏幕尺寸（物理像素，与截图分辨率一致）
func GetScreenSize() (width, height int) {
	return auto.PhysicalScreenSize()
}

// CaptureMeta 截图相对截图坐标系的缩放和偏移
type CaptureMeta struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX int
	OffsetY int
}

// CaptureForMatch 截图并转换为 BGR Mat 用于匹配
func CaptureForMatch(region *auto.Region) (gocv.Mat, image.Image, CaptureMeta, error) {
	img, err := Capture(region)
	if err != nil {
		return gocv.Mat{}, nil, CaptureMeta{}, err
	}

	mat, err := cv.ImageToMat(img)
	if err != nil {
		return gocv.Mat{}, nil, CaptureMeta{}, err
	}

	meta := BuildCaptureMeta(region, img.Bounds(), GetScreenSize)
	return mat, img, meta, nil
}

// BuildCaptureMeta 由实际截图尺寸和期望尺寸计算缩放。
// Retina 等平台上截图分辨率可能是逻辑分辨率的整数倍
func BuildCaptureMeta(region *auto.Region, bounds image.Rectangle, screenSize func() (int, int)) CaptureMeta {
	imgW, imgH := bounds.Dx(), bounds.Dy()

	var expectedW, expectedH, offsetX, offsetY int
	if region != nil {
		expectedW, expectedH = region.Width, region.Height
		offsetX, offsetY = region.X, region.Y
	} else {
		expectedW, expectedH = screenSize()
	}

	scaleX := 1.0
	if expectedW > 0 && imgW > 0 {
		scaleX = float64(imgW) / float64(expectedW)
	}
	scaleY := 1.0
	if expectedH > 0 && imgH > 0 {
		scaleY = float64(imgH) / float64(expectedH)
	}

	return CaptureMeta{
		ScaleX:  scaleX,
		ScaleY:  scaleY,
		OffsetX: offsetX,
		OffsetY: offsetY,
	}
}

// AdjustPoint 把截图像素坐标映射回截图坐标系（反向缩放 + 偏移）
func AdjustPoint(p cv.Point, meta CaptureMeta) auto.Point {
	return auto.Point{
		X: auto.ScaleCoord(p.X, meta.ScaleX) + meta.OffsetX,
		Y: auto.ScaleCoord(p.Y, meta.ScaleY) + meta.OffsetY,
	}
}
