package executor

import (
	"github.com/zoeyai/autoclicker/pkg/config"
)

// iterate 执行一轮完整流程，遇到第一个错误即返回
func (e *Executor) iterate() error {
	e.mu.Lock()
	e.steps = e.steps[:0]
	e.mu.Unlock()

	cfg := e.cfg
	steps := []struct {
		state State
		run   func() error
	}{
		{StateActivateA, func() error { return e.activate(cfg.WindowA) }},
		{StateDismissOverlays, e.dismissOverlays},
		{StateActivateB, func() error { return e.activate(cfg.WindowB) }},
		{StateClick1, e.clickAppButton},
		{StateAssertFocus1, func() error { return e.assertActive(cfg.WindowA) }},
		{StateClick2, e.clickPageButton},
		{StateAssertFocus2, func() error { return e.assertActive(cfg.Final()) }},
	}

	for _, s := range steps {
		if err := e.step(s.state, s.run); err != nil {
			return err
		}
	}
	return nil
}

// activate 激活窗口并把鼠标移到窗口中心，后续滚动作用于鼠标下方的窗口
func (e *Executor) activate(title string) error {
	w, err := e.deps.Windows.Activate(title, e.cfg.Activate.Attempts, e.cfg.Activate.Delay.Std())
	if err != nil {
		return err
	}
	if w != nil && !w.Bounds.Empty() && e.deps.Pointer != nil {
		if err := e.deps.Pointer.Move(w.Bounds.Center()); err != nil {
			e.deps.Log.Warn("移动鼠标到 %s 中心失败: %v", w, err)
		}
	}
	return nil
}

// dismissOverlays 点掉出现的遮挡元素，没出现不算错误
func (e *Executor) dismissOverlays() error {
	for _, ov := range e.cfg.Overlays {
		p, ok := e.deps.Screen.FindOnScreen(ov.Image, ov.Confidence, ov.Timeout.Std())
		if !ok {
			continue
		}
		if e.deps.Pointer == nil {
			e.deps.Log.Warn("没有可用的鼠标, 跳过遮挡元素 %s", ov.Image)
			continue
		}
		if err := e.deps.Pointer.Click(*p); err != nil {
			return err
		}
		e.deps.Log.Info("已关闭遮挡元素 %s", ov.Image)
	}
	return nil
}

// clickAppButton 点击应用内的下载按钮，等待浏览器弹出
func (e *Executor) clickAppButton() error {
	if err := e.click(e.cfg.AppButton); err != nil {
		return err
	}
	e.deps.Clock.Sleep(e.cfg.SettlePause.Std())
	return nil
}

// clickPageButton 点击页面上的下载按钮并关闭标签页
func (e *Executor) clickPageButton() error {
	if err := e.click(e.cfg.PageButton); err != nil {
		return err
	}
	if len(e.cfg.CloseTabKeys) == 0 {
		return nil
	}
	return e.deps.Keys.HotKey(e.cfg.CloseTabKeys...)
}

func (e *Executor) click(b config.Button) error {
	var err error
	if b.Scroll > 0 {
		_, err = e.deps.Screen.ClickWithScrollFallback(b.Image, b.Scroll, b.Confidence, b.Timeout.Std())
	} else {
		_, err = e.deps.Screen.ClickOnScreen(b.Image, b.Confidence, b.Timeout.Std())
	}
	return err
}

func (e *Executor) assertActive(title string) error {
	return e.deps.Windows.AssertActive(title, e.cfg.Assert.Attempts, e.cfg.Assert.Delay.Std())
}
