package cv

import (
	"image"
	"math"
	"time"

	"gocv.io/x/gocv"
)

// TemplateMatching 模板匹配器，不持有 Mat 的所有权
type TemplateMatching struct {
	imSearch  gocv.Mat
	imSource  gocv.Mat
	threshold float64
	rgb       bool
}

// NewTemplateMatching 创建模板匹配器。rgb 为 true 时在灰度匹配定位后
// 再按三通道分别计算置信度，取最小值
func NewTemplateMatching(search, source gocv.Mat, threshold float64, rgb bool) *TemplateMatching {
	return &TemplateMatching{
		imSearch:  search,
		imSource:  source,
		threshold: threshold,
		rgb:       rgb,
	}
}

// FindBestResult 返回置信度达到阈值的最佳匹配，达不到时返回 nil, nil
func (t *TemplateMatching) FindBestResult() (*MatchResult, error) {
	best, err := t.Best()
	if err != nil || best == nil {
		return nil, err
	}
	if best.Confidence >= t.threshold {
		return best, nil
	}
	return nil, nil
}

// Best 返回得分最高的位置，不做阈值判断
func (t *TemplateMatching) Best() (*MatchResult, error) {
	startTime := time.Now()

	if err := checkSourceLargerThanSearch(t.imSource, t.imSearch); err != nil {
		return nil, err
	}

	result := t.getTemplateResultMatrix()
	defer result.Close()

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)

	h, w := t.imSearch.Rows(), t.imSearch.Cols()
	confidence := t.getConfidence(maxLoc, maxVal, w, h)
	middlePoint, rectangle := getTargetRectangle(maxLoc, w, h)

	return &MatchResult{
		Result:     middlePoint,
		Rectangle:  rectangle,
		Confidence: confidence,
		Time:       float64(time.Since(startTime).Microseconds()) / 1000,
	}, nil
}

// getTemplateResultMatrix 计算灰度模板匹配结果矩阵
func (t *TemplateMatching) getTemplateResultMatrix() gocv.Mat {
	srcGray := ToGray(t.imSource)
	searchGray := ToGray(t.imSearch)
	defer srcGray.Close()
	defer searchGray.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	result := gocv.NewMat()
	gocv.MatchTemplate(srcGray, searchGray, &result, gocv.TmCcoeffNormed, mask)
	return result
}

// getConfidence 计算置信度
func (t *TemplateMatching) getConfidence(maxLoc image.Point, maxVal float32, w, h int) float64 {
	if t.rgb {
		imgCrop := t.imSource.Region(image.Rect(maxLoc.X, maxLoc.Y, maxLoc.X+w, maxLoc.Y+h))
		defer imgCrop.Close()
		return sanitize(CalRGBConfidence(imgCrop, t.imSearch))
	}
	return sanitize(float64(maxVal))
}

// sanitize 纯色模板的归一化相关系数分母为 0，OpenCV 会给出 NaN 或 Inf
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// getTargetRectangle 由左上角计算中心点和四个角点
func getTargetRectangle(leftTopPos image.Point, w, h int) (Point, Rectangle) {
	xMin, yMin := leftTopPos.X, leftTopPos.Y

	middlePoint := Point{X: xMin + w/2, Y: yMin + h/2}

	// 四个角点: 左上 -> 左下 -> 右下 -> 右上
	rectangle := Rectangle{
		TopLeft:     Point{X: xMin, Y: yMin},
		BottomLeft:  Point{X: xMin, Y: yMin + h},
		BottomRight: Point{X: xMin + w, Y: yMin + h},
		TopRight:    Point{X: xMin + w, Y: yMin},
	}
	return middlePoint, rectangle
}

// checkSourceLargerThanSearch 检查源图像是否不小于搜索图像
func checkSourceLargerThanSearch(source, search gocv.Mat) error {
	if source.Empty() || search.Empty() ||
		source.Rows() < search.Rows() || source.Cols() < search.Cols() {
		return &ImageSizeError{
			SourceSize: [2]int{source.Cols(), source.Rows()},
			SearchSize: [2]int{search.Cols(), search.Rows()},
		}
	}
	return nil
}

// ImageSizeError 图像尺寸错误
type ImageSizeError struct {
	SourceSize [2]int
	SearchSize [2]int
}

func (e *ImageSizeError) Error() string {
	return "搜索图像尺寸大于源图像"
}
