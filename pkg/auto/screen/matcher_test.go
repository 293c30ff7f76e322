package screen

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/zoeyai/autoclicker/internal/logger"
	"github.com/zoeyai/autoclicker/pkg/auto"
	"github.com/zoeyai/autoclicker/pkg/vision/cv"
)

// locateFunc 用函数实现 Locator
type locateFunc func(template string, confidence float64) (*auto.Point, error)

func (f locateFunc) Locate(template string, confidence float64) (*auto.Point, error) {
	return f(template, confidence)
}

// fakePointer 记录所有输入
type fakePointer struct {
	clicks  []auto.Point
	scrolls []int
	moves   []auto.Point
}

func (p *fakePointer) Click(pt auto.Point) error {
	p.clicks = append(p.clicks, pt)
	return nil
}

func (p *fakePointer) Scroll(amount int) error {
	p.scrolls = append(p.scrolls, amount)
	return nil
}

func (p *fakePointer) Move(pt auto.Point) error {
	p.moves = append(p.moves, pt)
	return nil
}

// fakeCapturer 返回固定图像
type fakeCapturer struct {
	img image.Image
	err error
}

func (c fakeCapturer) Capture() (image.Image, error) {
	return c.img, c.err
}

var button = auto.Point{X: 640, Y: 360}

func newTestMatcher(loc Locator) (*Matcher, *fakePointer, *auto.FakeClock) {
	clock := auto.NewFakeClock(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	ptr := &fakePointer{}
	m := NewMatcher(loc, ptr, clock, logger.NewWithWriter(&bytes.Buffer{}))
	return m, ptr, clock
}

// appearsAfter 从第一次调用起经过 d 后才能找到
func appearsAfter(clock *auto.FakeClock, d time.Duration, polls *int) locateFunc {
	var start time.Time
	return func(string, float64) (*auto.Point, error) {
		*polls++
		if start.IsZero() {
			start = clock.Now()
		}
		if clock.Now().Sub(start) >= d {
			p := button
			return &p, nil
		}
		return nil, nil
	}
}

func sum(ds []time.Duration) time.Duration {
	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return total
}

func TestFindOnScreenImmediate(t *testing.T) {
	polls := 0
	m, _, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, 0, &polls)

	p, ok := m.FindOnScreen("a.png", 0.99, time.Second)
	if !ok || *p != button {
		t.Fatalf("应立即找到, got %v %v", p, ok)
	}
	if polls != 1 || len(clock.Sleeps()) != 0 {
		t.Errorf("polls=%d sleeps=%v, 期望 1 次定位且不等待", polls, clock.Sleeps())
	}
}

func TestFindOnScreenAppearsBeforeTimeout(t *testing.T) {
	polls := 0
	m, _, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, 700*time.Millisecond, &polls)

	start := clock.Now()
	p, ok := m.FindOnScreen("a.png", 0.99, time.Second)
	if !ok || *p != button {
		t.Fatalf("应在超时前找到, got %v %v", p, ok)
	}
	// 0, 300, 600, 900ms 各定位一次
	if polls != 4 {
		t.Errorf("polls = %d, 期望 4", polls)
	}
	if elapsed := clock.Now().Sub(start); elapsed > time.Second {
		t.Errorf("找到时已过去 %v, 不应超过 timeout", elapsed)
	}
}

func TestFindOnScreenTimeout(t *testing.T) {
	polls := 0
	m, _, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, time.Hour, &polls)

	start := clock.Now()
	p, ok := m.FindOnScreen("a.png", 0.99, time.Second)
	if ok || p != nil {
		t.Fatalf("不应找到, got %v", p)
	}
	if elapsed := clock.Now().Sub(start); elapsed < time.Second {
		t.Errorf("未找到时只过去了 %v, 应不少于 timeout", elapsed)
	}
	want := []time.Duration{300 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond, 100 * time.Millisecond}
	if got := clock.Sleeps(); !reflect.DeepEqual(got, want) {
		t.Errorf("sleeps = %v, 期望 %v (最后一次截断到截止时间)", got, want)
	}
	if polls != 5 {
		t.Errorf("polls = %d, 期望 5", polls)
	}
	if sum(clock.Sleeps()) != time.Second {
		t.Errorf("总等待 %v, 期望正好 1s", sum(clock.Sleeps()))
	}
}

func TestFindOnScreenZeroTimeout(t *testing.T) {
	polls := 0
	m, _, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, time.Hour, &polls)

	if _, ok := m.FindOnScreen("a.png", 0.99, 0); ok {
		t.Fatal("不应找到")
	}
	if polls != 1 || len(clock.Sleeps()) != 0 {
		t.Errorf("timeout=0 应只定位一次, polls=%d sleeps=%v", polls, clock.Sleeps())
	}
}

func TestFindOnScreenCustomInterval(t *testing.T) {
	polls := 0
	m, _, clock := newTestMatcher(nil)
	m.Interval = 250 * time.Millisecond
	m.Locator = appearsAfter(clock, time.Hour, &polls)

	m.FindOnScreen("a.png", 0.99, time.Second)
	for _, d := range clock.Sleeps() {
		if d != 250*time.Millisecond {
			t.Errorf("sleep %v, 期望 250ms", d)
		}
	}
	if polls != 5 {
		t.Errorf("polls = %d, 期望 5", polls)
	}
}

func TestFindOnScreenBackendErrorSwallowed(t *testing.T) {
	calls := 0
	m, _, _ := newTestMatcher(locateFunc(func(string, float64) (*auto.Point, error) {
		calls++
		if calls <= 2 {
			return nil, errors.New("截屏失败")
		}
		p := button
		return &p, nil
	}))

	p, ok := m.FindOnScreen("a.png", 0.99, 10*time.Second)
	if !ok || *p != button {
		t.Fatalf("出错后应继续轮询并找到, got %v %v", p, ok)
	}
	if calls != 3 {
		t.Errorf("calls = %d, 期望 3", calls)
	}
}

func TestFindOnScreenBackendAlwaysFails(t *testing.T) {
	m, _, clock := newTestMatcher(locateFunc(func(string, float64) (*auto.Point, error) {
		return nil, errors.New("截屏失败")
	}))

	start := clock.Now()
	if _, ok := m.FindOnScreen("a.png", 0.99, time.Second); ok {
		t.Fatal("不应找到")
	}
	if clock.Now().Sub(start) < time.Second {
		t.Error("定位一直出错时也应等满 timeout")
	}
}

func TestConfidencePassedThrough(t *testing.T) {
	var got float64
	m, _, _ := newTestMatcher(locateFunc(func(_ string, confidence float64) (*auto.Point, error) {
		got = confidence
		p := button
		return &p, nil
	}))

	m.FindOnScreen("a.png", 0.8, time.Second)
	if got != 0.8 {
		t.Errorf("confidence = %v, 期望 0.8", got)
	}
}

func TestClickOnScreen(t *testing.T) {
	polls := 0
	m, ptr, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, 0, &polls)

	p, err := m.ClickOnScreen("a.png", 0.99, time.Second)
	if err != nil {
		t.Fatalf("点击失败: %v", err)
	}
	if p != button || !reflect.DeepEqual(ptr.clicks, []auto.Point{button}) {
		t.Errorf("clicks = %v, 期望只点击 %v", ptr.clicks, button)
	}
}

func TestClickOnScreenNotFound(t *testing.T) {
	polls := 0
	m, ptr, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, time.Hour, &polls)

	_, err := m.ClickOnScreen("a.png", 0.99, time.Second)
	if !errors.Is(err, auto.ErrButtonNotFound) {
		t.Fatalf("期望 ErrButtonNotFound, 实际 %v", err)
	}
	if len(ptr.clicks) != 0 {
		t.Errorf("未找到时不应点击: %v", ptr.clicks)
	}
}

func TestClickOnScreenRecheck(t *testing.T) {
	moved := auto.Point{X: 640, Y: 420}
	calls := 0
	m, ptr, _ := newTestMatcher(locateFunc(func(string, float64) (*auto.Point, error) {
		calls++
		p := button
		if calls > 1 {
			p = moved
		}
		return &p, nil
	}))
	m.Recheck = true

	p, err := m.ClickOnScreen("a.png", 0.99, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if p != moved {
		t.Errorf("返回点 = %v, 期望新位置 %v", p, moved)
	}
	if !reflect.DeepEqual(ptr.clicks, []auto.Point{button, moved}) {
		t.Errorf("clicks = %v", ptr.clicks)
	}
}

func TestClickOnScreenRecheckUnchanged(t *testing.T) {
	polls := 0
	m, ptr, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, 0, &polls)
	m.Recheck = true

	if _, err := m.ClickOnScreen("a.png", 0.99, time.Second); err != nil {
		t.Fatal(err)
	}
	if len(ptr.clicks) != 1 {
		t.Errorf("位置不变时只点击一次, clicks=%v", ptr.clicks)
	}
	if polls != 2 {
		t.Errorf("polls = %d, 期望 2 (定位 + 复查)", polls)
	}
}

func TestClickWithScrollFallback(t *testing.T) {
	m, ptr, _ := newTestMatcher(nil)
	// 只有滚动之后按钮才出现
	m.Locator = locateFunc(func(string, float64) (*auto.Point, error) {
		if len(ptr.scrolls) == 0 {
			return nil, nil
		}
		p := button
		return &p, nil
	})

	p, err := m.ClickWithScrollFallback("nexus_app_download.png", 900, 0.99, time.Second)
	if err != nil {
		t.Fatalf("滚动后应点击成功: %v", err)
	}
	if p != button {
		t.Errorf("p = %v", p)
	}
	if !reflect.DeepEqual(ptr.scrolls, []int{-900}) {
		t.Errorf("scrolls = %v, 期望恰好一次 -900", ptr.scrolls)
	}
	if len(ptr.clicks) != 1 {
		t.Errorf("clicks = %v, 期望 1 次", ptr.clicks)
	}
}

func TestClickWithScrollFallbackDirectHit(t *testing.T) {
	polls := 0
	m, ptr, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, 0, &polls)

	if _, err := m.ClickWithScrollFallback("a.png", 900, 0.99, time.Second); err != nil {
		t.Fatal(err)
	}
	if len(ptr.scrolls) != 0 {
		t.Errorf("直接找到时不应滚动: %v", ptr.scrolls)
	}
}

func TestClickWithScrollFallbackFails(t *testing.T) {
	polls := 0
	m, ptr, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, time.Hour, &polls)

	start := clock.Now()
	_, err := m.ClickWithScrollFallback("a.png", 900, 0.99, time.Second)
	if !errors.Is(err, auto.ErrButtonNotFound) {
		t.Fatalf("期望 ErrButtonNotFound, 实际 %v", err)
	}
	if len(ptr.scrolls) != 1 {
		t.Errorf("scrolls = %v, 期望恰好一次", ptr.scrolls)
	}
	if elapsed := clock.Now().Sub(start); elapsed != 2*time.Second {
		t.Errorf("elapsed = %v, 期望两次完整超时 2s", elapsed)
	}
}

func TestSnapshotOnFailure(t *testing.T) {
	polls := 0
	m, _, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, time.Hour, &polls)

	dir := filepath.Join(t.TempDir(), "debug")
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	m.Snapshots = NewSnapshotter(dir, fakeCapturer{img: img})

	if _, err := m.ClickOnScreen("assets/nexus_page_download.png", 0.8, time.Second); !errors.Is(err, auto.ErrButtonNotFound) {
		t.Fatalf("期望 ErrButtonNotFound, 实际 %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("截图目录不存在: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("截图数量 = %d, 期望 1", len(entries))
	}
	if want := SnapshotName("assets/nexus_page_download.png", clock.Now()); entries[0].Name() != want {
		t.Errorf("文件名 = %q, 期望 %q", entries[0].Name(), want)
	}
}

func TestSnapshotOnceWithScrollFallback(t *testing.T) {
	polls := 0
	m, _, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, time.Hour, &polls)

	dir := t.TempDir()
	m.Snapshots = NewSnapshotter(dir, fakeCapturer{img: image.NewRGBA(image.Rect(0, 0, 64, 48))})

	if _, err := m.ClickWithScrollFallback("a.png", 900, 0.99, time.Second); !errors.Is(err, auto.ErrButtonNotFound) {
		t.Fatalf("期望 ErrButtonNotFound, 实际 %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("滚动前不应保存截图, 截图数量 = %d, 期望 1", len(entries))
	}
}

func TestSnapshotEncodeFailureRemovesFile(t *testing.T) {
	dir := t.TempDir()
	// 宽度为 0 的图像无法编码为 PNG
	s := NewSnapshotter(dir, fakeCapturer{img: image.NewRGBA(image.Rect(0, 0, 0, 10))})

	if _, err := s.Save("a.png", time.Now()); err == nil {
		t.Fatal("编码失败应返回错误")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("编码失败后不应留下文件, 实际 %d 个", len(entries))
	}
}

func TestSnapshotFailureNotReturned(t *testing.T) {
	polls := 0
	m, _, clock := newTestMatcher(nil)
	m.Locator = appearsAfter(clock, time.Hour, &polls)
	m.Snapshots = NewSnapshotter(t.TempDir(), fakeCapturer{err: errors.New("无显示器")})

	_, err := m.ClickOnScreen("a.png", 0.8, 0)
	if !errors.Is(err, auto.ErrButtonNotFound) {
		t.Errorf("截图失败不应改变返回的错误: %v", err)
	}
}

func TestLabel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}

	out, err := Label(img, "nexus_app_download.png")
	if err != nil {
		t.Fatalf("标注失败: %v", err)
	}
	if out.Bounds().Dx() != 200 || out.Bounds().Dy() != 100+labelHeight {
		t.Errorf("标注后尺寸 = %v", out.Bounds())
	}
	// 原图整体下移到标注栏之下
	if got := out.RGBAAt(10, labelHeight+10); got != (color.RGBA{R: 200, G: 10, B: 10, A: 255}) {
		t.Errorf("原图像素 = %v", got)
	}

	// 标注栏里应有白色文字像素
	lit := false
	for y := 0; y < labelHeight && !lit; y++ {
		for x := 0; x < 200; x++ {
			if out.RGBAAt(x, y).R > 128 {
				lit = true
				break
			}
		}
	}
	if !lit {
		t.Error("标注栏中没有绘制文字")
	}
}

func TestSnapshotName(t *testing.T) {
	at := time.Date(2026, 10, 14, 15, 30, 0, 123_000_000, time.UTC)
	cases := map[string]string{
		"nexus_app_download.png":   "nexus_app_download_20261014-153000.123.png",
		"assets/page download.png": "page_download_20261014-153000.123.png",
		"":                         "snapshot_20261014-153000.123.png",
	}
	for in, want := range cases {
		if got := SnapshotName(in, at); got != want {
			t.Errorf("SnapshotName(%q) = %q, 期望 %q", in, got, want)
		}
	}
}

func TestBuildCaptureMeta(t *testing.T) {
	screenSize := func() (int, int) { return 1920, 1080 }

	full := BuildCaptureMeta(nil, image.Rect(0, 0, 3840, 2160), screenSize)
	if full.ScaleX != 2 || full.ScaleY != 2 || full.OffsetX != 0 {
		t.Errorf("全屏 meta = %+v", full)
	}
	if p := AdjustPoint(cv.Point{X: 200, Y: 100}, full); p != (auto.Point{X: 100, Y: 50}) {
		t.Errorf("全屏坐标映射 = %v", p)
	}

	region := &auto.Region{X: 100, Y: 200, Width: 400, Height: 300}
	meta := BuildCaptureMeta(region, image.Rect(0, 0, 400, 300), screenSize)
	if meta.ScaleX != 1 || meta.OffsetX != 100 || meta.OffsetY != 200 {
		t.Errorf("区域 meta = %+v", meta)
	}
	if p := AdjustPoint(cv.Point{X: 10, Y: 20}, meta); p != (auto.Point{X: 110, Y: 220}) {
		t.Errorf("区域坐标映射 = %v", p)
	}
}
