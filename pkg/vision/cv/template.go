package cv

import (
	"fmt"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"
)

// CV 包配置
var (
	// DefaultThreshold 默认匹配阈值
	DefaultThreshold = 0.8
	// CurrentPath 相对模板路径的基准目录，为空时相对于工作目录
	CurrentPath = ""
)

// Template 磁盘上的模板图像，首次匹配时读取并缓存
type Template struct {
	// Filename 模板文件路径
	Filename string
	// Threshold 匹配阈值
	Threshold float64
	// RGB 是否按三通道校验置信度
	RGB bool

	mu        sync.Mutex
	cachedMat *gocv.Mat
}

// TemplateOption 模板选项
type TemplateOption func(*Template)

// NewTemplate 创建新的 Template
func NewTemplate(filename string, opts ...TemplateOption) *Template {
	t := &Template{
		Filename:  filename,
		Threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithTemplateThreshold 设置阈值
func WithTemplateThreshold(threshold float64) TemplateOption {
	return func(t *Template) {
		t.Threshold = threshold
	}
}

// WithTemplateRGB 设置三通道校验
func WithTemplateRGB(rgb bool) TemplateOption {
	return func(t *Template) {
		t.RGB = rgb
	}
}

// MatchIn 在屏幕图像中匹配模板，返回中心点，未达到阈值时返回 nil
func (t *Template) MatchIn(screen gocv.Mat) (*Point, error) {
	result, err := t.MatchResultIn(screen)
	if err != nil || result == nil {
		return nil, err
	}
	pos := result.Result
	return &pos, nil
}

// MatchResultIn 在屏幕图像中匹配模板，返回完整匹配结果，未达到阈值时返回 nil
func (t *Template) MatchResultIn(screen gocv.Mat) (*MatchResult, error) {
	return t.match(screen, true)
}

// BestIn 返回得分最高的位置，不做阈值判断，用于诊断阈值设置
func (t *Template) BestIn(screen gocv.Mat) (*MatchResult, error) {
	return t.match(screen, false)
}

func (t *Template) match(screen gocv.Mat, useThreshold bool) (*MatchResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	image, err := t.readImage()
	if err != nil {
		return nil, err
	}

	m := NewTemplateMatching(image, screen, t.Threshold, t.RGB)
	if useThreshold {
		return m.FindBestResult()
	}
	return m.Best()
}

// Size 返回模板图像尺寸
func (t *Template) Size() (width, height int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	image, err := t.readImage()
	if err != nil {
		return 0, 0, err
	}
	return image.Cols(), image.Rows(), nil
}

// readImage 返回缓存的模板图像，调用方需持有锁且不能 Close 返回值
func (t *Template) readImage() (gocv.Mat, error) {
	if t.cachedMat != nil && !t.cachedMat.Empty() {
		return *t.cachedMat, nil
	}

	mat, err := ReadImage(t.Path())
	if err != nil {
		return mat, err
	}
	t.cachedMat = &mat
	return mat, nil
}

// Path 返回解析后的模板路径
func (t *Template) Path() string {
	if CurrentPath != "" && !filepath.IsAbs(t.Filename) {
		return filepath.Join(CurrentPath, t.Filename)
	}
	return t.Filename
}

// Close 释放缓存的模板图像
func (t *Template) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cachedMat != nil {
		t.cachedMat.Close()
		t.cachedMat = nil
	}
}

// String 返回字符串表示
func (t *Template) String() string {
	return fmt.Sprintf("Template(%s)", t.Filename)
}
