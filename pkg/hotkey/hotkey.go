// Package hotkey 提供全局停止热键
//
// 热键回调运行在 gohook 的事件 goroutine 中，它与工作 goroutine 之间
// 只通过 StopFlag 通信：回调只写，主循环只读。
package hotkey

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	hook "github.com/robotn/gohook"

	"github.com/zoeyai/autoclicker/internal/logger"
)

// StopFlag 只会从未设置变为已设置的停止标志
type StopFlag struct {
	set atomic.Bool
}

// Set 设置标志，第一次设置时返回 true
func (f *StopFlag) Set() bool {
	return f.set.CompareAndSwap(false, true)
}

// IsSet 标志是否已设置
func (f *StopFlag) IsSet() bool {
	return f.set.Load()
}

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"opt":     "alt",
	"cmd":     "cmd",
	"command": "cmd",
	"win":     "cmd",
	"super":   "cmd",
	"meta":    "cmd",
}

// keyAliases 主键的常见写法到 gohook 键名的映射
var keyAliases = map[string]string{
	"escape": "esc",
	"return": "enter",
}

// ParseCombo 解析 "ctrl+shift+s" 形式的组合键，返回 gohook 的键序：
// 主键在前，修饰键按出现顺序在后，如 []string{"s", "ctrl", "shift"}。
// 主键必须在 hook.Keycode 中，否则注册后永远不会触发。
func ParseCombo(combo string) ([]string, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(combo)), "+")

	var key string
	var modifiers []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("组合键 %q 格式错误", combo)
		}
		if m, ok := modifierAliases[p]; ok {
			if slices.Contains(modifiers, m) {
				return nil, fmt.Errorf("组合键 %q 中 %s 重复", combo, m)
			}
			modifiers = append(modifiers, m)
			continue
		}
		if key != "" {
			return nil, fmt.Errorf("组合键 %q 只能有一个主键", combo)
		}
		key = p
	}
	if key == "" {
		return nil, fmt.Errorf("组合键 %q 缺少主键", combo)
	}
	if k, ok := keyAliases[key]; ok {
		key = k
	}
	if _, ok := hook.Keycode[key]; !ok {
		return nil, fmt.Errorf("组合键 %q 中 %s 不是可监听的按键", combo, key)
	}
	return append([]string{key}, modifiers...), nil
}

// Listener 全局热键监听器，按下组合键时设置 StopFlag
type Listener struct {
	combo string
	keys  []string
	flag  *StopFlag
	log   *logger.Logger

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// NewListener 创建监听器，log 为 nil 时使用默认 logger
func NewListener(combo string, flag *StopFlag, log *logger.Logger) (*Listener, error) {
	keys, err := ParseCombo(combo)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}
	return &Listener{combo: combo, keys: keys, flag: flag, log: log}, nil
}

// Combo 返回原始组合键字符串
func (l *Listener) Combo() string {
	return l.combo
}

// Start 注册全局按键钩子并在后台分发事件
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return nil
	}

	hook.Register(hook.KeyDown, l.keys, func(hook.Event) {
		l.trigger()
	})

	events := hook.Start()
	l.done = make(chan struct{})
	go func(done chan struct{}) {
		<-hook.Process(events)
		close(done)
	}(l.done)

	l.started = true
	l.log.Debug("已注册停止热键 %s", l.combo)
	return nil
}

// Stop 注销钩子并等待事件分发结束
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started {
		return
	}
	hook.End()
	<-l.done
	l.started = false
}

// trigger 热键回调
func (l *Listener) trigger() {
	if !l.flag.Set() {
		return
	}
	l.log.Info("收到停止热键 %s, 当前轮结束后停止", l.combo)
}
