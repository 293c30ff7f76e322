package auto

import (
	"errors"
	"testing"
	"time"
)

func TestDetectCoordSpace(t *testing.T) {
	tests := []struct {
		name                   string
		reportW, reportH       int
		captureW, captureH     int
		fallback               float64
		wantScaleX, wantScaleY float64
	}{
		{"逻辑尺寸 150%", 1280, 720, 1920, 1080, 1, 1.5, 1.5},
		{"物理尺寸", 1920, 1080, 1920, 1080, 1.5, 1, 1},
		{"接近 1 吸附", 1920, 1080, 1950, 1090, 1, 1, 1},
		{"报告尺寸无效", 0, 0, 1920, 1080, 2, 1, 1},
		{"截图失败用 DPI", 1280, 720, 0, 0, 1.25, 1.25, 1.25},
		{"比例离谱", 100, 100, 1920, 1080, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectCoordSpace(tt.reportW, tt.reportH, tt.captureW, tt.captureH, tt.fallback)
			if got.ScaleX != tt.wantScaleX || got.ScaleY != tt.wantScaleY {
				t.Errorf("DetectCoordSpace = %+v, 期望 (%v, %v)", got, tt.wantScaleX, tt.wantScaleY)
			}
		})
	}
}

func TestCoordSpaceConvert(t *testing.T) {
	c := CoordSpace{ScaleX: 1.5, ScaleY: 2}

	if got := c.ToInput(Point{X: 300, Y: 400}); got != (Point{X: 200, Y: 200}) {
		t.Errorf("ToInput = %v", got)
	}
	if got := c.ToScreen(Point{X: 200, Y: 200}); got != (Point{X: 300, Y: 400}) {
		t.Errorf("ToScreen = %v", got)
	}

	r := c.RegionToInput(Region{X: 30, Y: 40, Width: 1, Height: 1})
	if r.Width != 1 || r.Height != 1 {
		t.Errorf("非空区域换算后至少 1 像素, 实际 %+v", r)
	}
	if got := c.RegionToScreen(Region{X: 10, Y: 10, Width: 100, Height: 50}); got != (Region{X: 15, Y: 20, Width: 150, Height: 100}) {
		t.Errorf("RegionToScreen = %+v", got)
	}
	if got := Identity.ToInput(Point{X: 7, Y: 9}); got != (Point{X: 7, Y: 9}) {
		t.Errorf("Identity.ToInput = %v", got)
	}
}

func TestRegion(t *testing.T) {
	r := Region{X: 10, Y: 20, Width: 100, Height: 50}
	if c := r.Center(); c != (Point{X: 60, Y: 45}) {
		t.Errorf("Center = %v", c)
	}
	if r.Empty() || !(Region{Width: 10}).Empty() {
		t.Error("Empty 判断错误")
	}
}

func TestFakeClock(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewFakeClock(start)

	var ticks []time.Time
	c.OnSleep(func(now time.Time) { ticks = append(ticks, now) })

	c.Sleep(300 * time.Millisecond)
	c.Sleep(0)
	c.Advance(time.Second)

	if got := c.Now().Sub(start); got != 1300*time.Millisecond {
		t.Errorf("经过时间 = %v", got)
	}
	if s := c.Sleeps(); len(s) != 2 || s[0] != 300*time.Millisecond || s[1] != 0 {
		t.Errorf("Sleeps = %v", s)
	}
	if len(ticks) != 2 {
		t.Errorf("OnSleep 回调 %d 次, 期望 2", len(ticks))
	}
}

func TestErrors(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{WindowNotFound("Firefox", nil), ErrWindowNotFound},
		{WindowNotFound("Firefox", errors.New("枚举失败")), ErrWindowNotFound},
		{WindowNotActive("Firefox", ""), ErrWindowNotActive},
		{WindowNotActive("Firefox", "Terminal"), ErrWindowNotActive},
		{ButtonNotFound("a.png", "1s"), ErrButtonNotFound},
	}
	for _, c := range cases {
		if !errors.Is(c.err, c.sentinel) {
			t.Errorf("%v 应包装 %v", c.err, c.sentinel)
		}
		if !IsRetryable(c.err) {
			t.Errorf("%v 应可重试", c.err)
		}
	}
	cause := errors.New("枚举失败")
	if err := WindowNotFound("Firefox", cause); !errors.Is(err, cause) {
		t.Errorf("应保留底层错误, 实际 %v", err)
	}
	if IsRetryable(errors.New("其他错误")) {
		t.Error("未分类错误不属于三类错误")
	}
}
