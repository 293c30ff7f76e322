// Package config 定义自动点击流程的全部参数。
//
// 所有参数都有写死在 Default 中的默认值，配置文件只是可选的覆盖层：
// 文件不存在时直接使用默认值，文件中缺省的字段也回落到默认值。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Button 屏幕上的一个可点击元素（由模板图像识别）
type Button struct {
	// Image 模板图像路径，相对路径相对于工作目录
	Image string `yaml:"image"`
	// Confidence 匹配阈值 (0-1]
	Confidence float64 `yaml:"confidence"`
	// Timeout 等待元素出现的最长时间
	Timeout Duration `yaml:"timeout"`
	// Scroll 找不到时向下滚动的距离，0 表示不使用滚动兜底
	Scroll int `yaml:"scroll,omitempty"`
}

// Retry 窗口激活/焦点断言的重试参数
type Retry struct {
	Attempts int      `yaml:"attempts"`
	Delay    Duration `yaml:"delay"`
}

// Config 自动点击流程配置
type Config struct {
	// WindowA 第一个窗口（浏览器）的部分标题
	WindowA string `yaml:"window_a"`
	// WindowB 第二个窗口（应用）的部分标题
	WindowB string `yaml:"window_b"`
	// FinalWindow 一轮结束后应处于前台的窗口，为空时等于 WindowA
	FinalWindow string `yaml:"final_window,omitempty"`

	// Overlays 每轮开始时如果出现就点掉的遮挡元素（弹窗关闭按钮等）
	Overlays []Button `yaml:"overlays,omitempty"`
	// AppButton 应用窗口里的下载按钮
	AppButton Button `yaml:"app_button"`
	// PageButton 浏览器页面里的下载按钮
	PageButton Button `yaml:"page_button"`
	// CloseTabKeys 点击页面按钮后关闭标签页的组合键
	CloseTabKeys []string `yaml:"close_tab_keys"`

	// Activate 窗口激活重试
	Activate Retry `yaml:"activate"`
	// Assert 焦点断言重试
	Assert Retry `yaml:"assert"`

	// RetryLimit 连续失败多少轮后放弃
	RetryLimit int `yaml:"retry_limit"`
	// RetryPause 失败后重新开始前的等待
	RetryPause Duration `yaml:"retry_pause"`
	// SettlePause 点击应用按钮后等待浏览器弹出的时间
	SettlePause Duration `yaml:"settle_pause"`
	// IterationPause 成功一轮后的等待
	IterationPause Duration `yaml:"iteration_pause"`
	// PollInterval 图像匹配轮询间隔
	PollInterval Duration `yaml:"poll_interval"`
	// Recheck 点击后立即再定位一次，位置变化时补点
	Recheck bool `yaml:"recheck"`

	// StopHotkey 停止热键
	StopHotkey string `yaml:"stop_hotkey"`

	// LogLevel 日志级别
	LogLevel string `yaml:"log_level"`
	// LogFile 日志文件，为空不写文件
	LogFile string `yaml:"log_file,omitempty"`
	// DebugDir 识别失败时的截图目录，为空不截图
	DebugDir string `yaml:"debug_dir,omitempty"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		WindowA: "Mozilla Firefox",
		WindowB: "Nexus Mods App",
		AppButton: Button{
			Image:      "nexus_app_download.png",
			Confidence: 0.99,
			Timeout:    Duration(1 * time.Second),
			Scroll:     900,
		},
		PageButton: Button{
			Image:      "nexus_page_download.png",
			Confidence: 0.8,
			Timeout:    Duration(10 * time.Second),
		},
		CloseTabKeys: []string{"ctrl", "w"},
		Activate: Retry{
			Attempts: 3,
			Delay:    Duration(500 * time.Millisecond),
		},
		Assert: Retry{
			Attempts: 5,
			Delay:    Duration(200 * time.Millisecond),
		},
		RetryLimit:     3,
		RetryPause:     Duration(1 * time.Second),
		SettlePause:    Duration(1 * time.Second),
		IterationPause: Duration(1 * time.Second),
		PollInterval:   Duration(300 * time.Millisecond),
		Recheck:        true,
		StopHotkey:     "ctrl+shift+s",
		LogLevel:       "INFO",
	}
}

// Final 返回一轮结束后期望的前台窗口
func (c *Config) Final() string {
	if c.FinalWindow != "" {
		return c.FinalWindow
	}
	return c.WindowA
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	if c.WindowA == "" {
		errs = append(errs, errors.New("window_a 不能为空"))
	}
	if c.WindowB == "" {
		errs = append(errs, errors.New("window_b 不能为空"))
	}
	for name, b := range map[string]Button{"app_button": c.AppButton, "page_button": c.PageButton} {
		if err := b.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	for i, b := range c.Overlays {
		if err := b.validate(); err != nil {
			errs = append(errs, fmt.Errorf("overlays[%d]: %w", i, err))
		}
	}
	if c.RetryLimit < 1 {
		errs = append(errs, fmt.Errorf("retry_limit 必须大于 0, 实际为 %d", c.RetryLimit))
	}
	if c.Activate.Attempts < 1 || c.Assert.Attempts < 1 {
		errs = append(errs, errors.New("activate/assert 的 attempts 必须大于 0"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("poll_interval 必须大于 0"))
	}
	if c.StopHotkey == "" {
		errs = append(errs, errors.New("stop_hotkey 不能为空"))
	}
	return errors.Join(errs...)
}

func (b Button) validate() error {
	if b.Image == "" {
		return errors.New("image 不能为空")
	}
	if b.Confidence <= 0 || b.Confidence > 1 {
		return fmt.Errorf("confidence 必须在 (0, 1] 之间, 实际为 %v", b.Confidence)
	}
	if b.Timeout < 0 {
		return fmt.Errorf("timeout 不能为负, 实际为 %v", b.Timeout)
	}
	return nil
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器，配置位于 ~/.autoclicker/config.yaml
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return NewManagerWithDir(filepath.Join(homeDir, ".autoclicker"))
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.yaml"),
	}
}

// NewManagerWithFile 使用指定文件创建配置管理器
func NewManagerWithFile(configFile string) *Manager {
	return &Manager{
		configDir:  filepath.Dir(configFile),
		configFile: configFile,
	}
}

// Load 加载配置，文件不存在时返回默认配置
func (m *Manager) Load() (*Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.configFile)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 在默认值之上解码，缺省字段保持默认
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("配置无效: %w", err)
	}
	return cfg, nil
}

// Save 保存配置
func (m *Manager) Save(cfg *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

// Clear 删除配置文件
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := os.Remove(m.configFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}
