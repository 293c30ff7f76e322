package screen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	labelFontSize = 14
	labelHeight   = 24
)

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

// Snapshotter 把识别失败时的屏幕保存为带标注的 PNG
type Snapshotter struct {
	// Dir 截图目录，不存在时自动创建
	Dir string
	// Source 截图来源
	Source Capturer
}

// NewSnapshotter 创建快照器
func NewSnapshotter(dir string, source Capturer) *Snapshotter {
	return &Snapshotter{Dir: dir, Source: source}
}

// Save 截取当前屏幕，在顶部标注模板名和时间后保存，返回文件路径
func (s *Snapshotter) Save(template string, at time.Time) (string, error) {
	if s.Source == nil {
		return "", errors.New("没有截图来源")
	}
	img, err := s.Source.Capture()
	if err != nil {
		return "", err
	}

	labelled, err := Label(img, fmt.Sprintf("%s  not found  %s", filepath.Base(template), at.Format("2006-01-02 15:04:05.000")))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("创建截图目录失败: %w", err)
	}
	path := filepath.Join(s.Dir, SnapshotName(template, at))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("创建截图文件失败: %w", err)
	}

	if err := png.Encode(f, labelled); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("PNG 编码失败: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("写入截图文件失败: %w", err)
	}
	return path, nil
}

// SnapshotName 由模板名和时间生成文件名，如 nexus_app_download_20261014-153000.123.png
func SnapshotName(template string, at time.Time) string {
	base := filepath.Base(template)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, base)
	if base == "" || base == "." {
		base = "snapshot"
	}
	return fmt.Sprintf("%s_%s.png", base, at.Format("20060102-150405.000"))
}

// Label 在图像上方加一条黑底白字的标注栏，返回新图像
func Label(img image.Image, text string) (*image.RGBA, error) {
	f, err := loadLabelFont()
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()+labelHeight))
	draw.Draw(out, image.Rect(0, 0, b.Dx(), labelHeight), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, labelHeight, b.Dx(), b.Dy()+labelHeight), img, b.Min, draw.Src)

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(labelFontSize)
	c.SetClip(image.Rect(0, 0, b.Dx(), labelHeight))
	c.SetDst(out)
	c.SetSrc(image.NewUniform(color.White))
	c.SetHinting(font.HintingFull)

	pt := freetype.Pt(6, 4+int(c.PointToFixed(labelFontSize)>>6))
	if _, err := c.DrawString(text, pt); err != nil {
		return nil, fmt.Errorf("绘制标注失败: %w", err)
	}
	return out, nil
}

func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = freetype.ParseFont(goregular.TTF)
		if labelFontErr != nil {
			labelFontErr = fmt.Errorf("加载字体失败: %w", labelFontErr)
		}
	})
	return labelFont, labelFontErr
}
