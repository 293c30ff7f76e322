package auto

import (
	"errors"
	"fmt"
)

// 自动化流程中可重试的三类错误，主循环对它们一视同仁：记录、计数、从头重来
var (
	// ErrWindowNotFound 没有任何窗口标题包含查询字符串
	ErrWindowNotFound = errors.New("window not found")

	// ErrWindowNotActive 重试耗尽后目标窗口仍不是活动窗口
	ErrWindowNotActive = errors.New("window not active")

	// ErrButtonNotFound 超时内屏幕上没有匹配到模板图像
	ErrButtonNotFound = errors.New("button not found")
)

// WindowNotFound 构造窗口未找到错误
func WindowNotFound(title string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: 未找到标题包含 %q 的窗口: %w", ErrWindowNotFound, title, cause)
	}
	return fmt.Errorf("%w: 未找到标题包含 %q 的窗口", ErrWindowNotFound, title)
}

// WindowNotActive 构造窗口未激活错误
func WindowNotActive(expected, actual string) error {
	if actual == "" {
		return fmt.Errorf("%w: 期望活动窗口 %q, 当前无活动窗口", ErrWindowNotActive, expected)
	}
	return fmt.Errorf("%w: 期望活动窗口 %q, 实际为 %q", ErrWindowNotActive, expected, actual)
}

// ButtonNotFound 构造按钮未找到错误
func ButtonNotFound(template string, timeoutText string) error {
	return fmt.Errorf("%w: 模板 %q 在 %s 内未出现在屏幕上", ErrButtonNotFound, template, timeoutText)
}

// IsRetryable 判断错误是否属于可重试的三类错误
func IsRetryable(err error) bool {
	return errors.Is(err, ErrWindowNotFound) ||
		errors.Is(err, ErrWindowNotActive) ||
		errors.Is(err, ErrButtonNotFound)
}
