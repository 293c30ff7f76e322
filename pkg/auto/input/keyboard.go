package input

import (
	"errors"
	"fmt"

	"github.com/go-vgo/robotgo"
)

// Keyboard 系统键盘
type Keyboard struct{}

// NewKeyboard 创建系统键盘
func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// HotKey 按下组合键，最后一个是主键，前面的是修饰键，如 HotKey("ctrl", "w")
func (Keyboard) HotKey(keys ...string) error {
	key, modifiers, err := SplitCombo(keys)
	if err != nil {
		return err
	}
	if len(modifiers) == 0 {
		err = robotgo.KeyTap(key)
	} else {
		err = robotgo.KeyTap(key, modifiers)
	}
	if err != nil {
		return fmt.Errorf("发送组合键 %v 失败: %w", keys, err)
	}
	return nil
}

// SplitCombo 拆出主键和修饰键
func SplitCombo(keys []string) (key string, modifiers []string, err error) {
	if len(keys) == 0 {
		return "", nil, errors.New("组合键为空")
	}
	for _, k := range keys {
		if k == "" {
			return "", nil, fmt.Errorf("组合键 %v 中有空键", keys)
		}
	}
	return keys[len(keys)-1], keys[:len(keys)-1], nil
}
