package screen

import (
	"fmt"
	"image"
	"sync"

	"github.com/zoeyai/autoclicker/pkg/auto"
	"github.com/zoeyai/autoclicker/pkg/vision/cv"
)

// Locator 在当前屏幕上定位模板。
// 返回 nil, nil 表示本次截图中没有达到阈值的匹配
type Locator interface {
	Locate(template string, confidence float64) (*auto.Point, error)
}

// Pointer 合成鼠标输入
type Pointer interface {
	Click(p auto.Point) error
	Scroll(amount int) error
	Move(p auto.Point) error
}

// Capturer 可以提供当前屏幕截图，用于失败快照
type Capturer interface {
	Capture() (image.Image, error)
}

// CVLocator 截屏后用 OpenCV 模板匹配定位
type CVLocator struct {
	// Region 搜索区域，nil 表示全屏
	Region *auto.Region
	// RGB 三通道校验置信度
	RGB bool

	mu        sync.Mutex
	templates map[string]*cv.Template
	last      map[string]*cv.MatchResult
}

// NewCVLocator 创建全屏定位器
func NewCVLocator() *CVLocator {
	return &CVLocator{
		templates: make(map[string]*cv.Template),
		last:      make(map[string]*cv.MatchResult),
	}
}

// Locate 截取一次屏幕并匹配模板，返回匹配中心点（截图坐标系）
func (l *CVLocator) Locate(template string, confidence float64) (*auto.Point, error) {
	tmpl := l.template(template)

	mat, _, meta, err := CaptureForMatch(l.Region)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	best, err := tmpl.BestIn(mat)
	if err != nil {
		return nil, fmt.Errorf("匹配 %s 失败: %w", template, err)
	}

	l.mu.Lock()
	l.last[template] = best
	l.mu.Unlock()

	if best == nil || best.Confidence < confidence {
		return nil, nil
	}
	p := AdjustPoint(best.Result, meta)
	return &p, nil
}

// LastScore 返回模板最近一次匹配的最高置信度，没有匹配过时 ok 为 false
func (l *CVLocator) LastScore(template string) (score float64, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.last[template]
	if !ok || r == nil {
		return 0, false
	}
	return r.Confidence, true
}

// Capture 截取搜索区域
func (l *CVLocator) Capture() (image.Image, error) {
	return Capture(l.Region)
}

// Close 释放缓存的模板
func (l *CVLocator) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for name, t := range l.templates {
		t.Close()
		delete(l.templates, name)
	}
}

func (l *CVLocator) template(name string) *cv.Template {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.templates[name]
	if !ok {
		t = cv.NewTemplate(name, cv.WithTemplateRGB(l.RGB))
		l.templates[name] = t
	}
	return t
}
