package cv

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// ReadImage 读取彩色图像文件（BGR）
func ReadImage(filename string) (gocv.Mat, error) {
	if _, err := os.Stat(filename); err != nil {
		return gocv.NewMat(), fmt.Errorf("无法读取图像 %s: %w", filename, err)
	}
	mat := gocv.IMRead(filename, gocv.IMReadColor)
	if mat.Empty() {
		return mat, fmt.Errorf("无法解码图像: %s", filename)
	}
	return mat, nil
}

// ToGray 转换为灰度图
func ToGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	dst := gocv.NewMat()
	if src.Channels() == 4 {
		gocv.CvtColor(src, &dst, gocv.ColorBGRAToGray)
	} else {
		gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	}
	return dst
}

// ImageToMat 将 image.Image 转换为 BGR 格式的 gocv.Mat
func ImageToMat(img image.Image) (gocv.Mat, error) {
	// ImageToMatRGB 输出的已经是 OpenCV 的 BGR 通道顺序
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("图像转换失败: %w", err)
	}
	return mat, nil
}
