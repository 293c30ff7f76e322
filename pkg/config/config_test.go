package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.WindowA != "Mozilla Firefox" {
		t.Errorf("默认 WindowA 应为 Mozilla Firefox, 实际为 %s", cfg.WindowA)
	}
	if cfg.WindowB != "Nexus Mods App" {
		t.Errorf("默认 WindowB 应为 Nexus Mods App, 实际为 %s", cfg.WindowB)
	}
	if cfg.RetryLimit != 3 {
		t.Errorf("默认 RetryLimit 应为 3, 实际为 %d", cfg.RetryLimit)
	}
	if cfg.AppButton.Scroll != 900 {
		t.Errorf("默认滚动距离应为 900, 实际为 %d", cfg.AppButton.Scroll)
	}
	if cfg.PageButton.Timeout.Std() != 10*time.Second {
		t.Errorf("页面按钮默认超时应为 10s, 实际为 %v", cfg.PageButton.Timeout)
	}
	if cfg.Final() != cfg.WindowA {
		t.Errorf("FinalWindow 为空时应回落到 WindowA")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("默认配置应通过校验: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.WindowA = ""
	cfg.AppButton.Confidence = 1.5
	cfg.RetryLimit = 0
	cfg.Overlays = []Button{{Image: "", Confidence: 0.9}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("无效配置应返回错误")
	}
	msg := err.Error()
	for _, want := range []string{"window_a", "app_button", "retry_limit", "overlays[0]"} {
		if !strings.Contains(msg, want) {
			t.Errorf("错误信息应包含 %q: %s", want, msg)
		}
	}
}

func TestManagerSaveAndLoad(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	if manager.Exists() {
		t.Error("初始时配置文件不应存在")
	}

	cfg := Default()
	cfg.WindowA = "Google Chrome"
	cfg.FinalWindow = "Nexus Mods App"
	cfg.PageButton.Timeout = Duration(7500 * time.Millisecond)
	cfg.Overlays = []Button{{Image: "popup_close.png", Confidence: 0.9, Timeout: Duration(200 * time.Millisecond)}}

	if err := manager.Save(cfg); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}
	if !manager.Exists() {
		t.Error("保存后配置文件应存在")
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if loaded.WindowA != "Google Chrome" {
		t.Errorf("WindowA 不匹配: %s", loaded.WindowA)
	}
	if loaded.Final() != "Nexus Mods App" {
		t.Errorf("FinalWindow 不匹配: %s", loaded.Final())
	}
	if loaded.PageButton.Timeout.Std() != 7500*time.Millisecond {
		t.Errorf("时长往返后不一致: %v", loaded.PageButton.Timeout)
	}
	if len(loaded.Overlays) != 1 || loaded.Overlays[0].Image != "popup_close.png" {
		t.Errorf("Overlays 不匹配: %+v", loaded.Overlays)
	}
}

func TestManagerLoadPartialFile(t *testing.T) {
	dir := t.TempDir()
	manager := NewManagerWithDir(dir)

	content := "window_a: Brave\nretry_limit: 5\nretry_pause: 250\npage_button:\n  image: custom.png\n  confidence: 0.7\n  timeout: 3s\n"
	if err := os.WriteFile(manager.GetConfigFile(), []byte(content), 0644); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	cfg, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.WindowA != "Brave" || cfg.RetryLimit != 5 {
		t.Errorf("覆盖字段未生效: %+v", cfg)
	}
	if cfg.RetryPause.Std() != 250*time.Millisecond {
		t.Errorf("整数时长应按毫秒解析, 实际为 %v", cfg.RetryPause)
	}
	if cfg.PageButton.Timeout.Std() != 3*time.Second {
		t.Errorf("字符串时长解析错误: %v", cfg.PageButton.Timeout)
	}
	if cfg.WindowB != "Nexus Mods App" {
		t.Errorf("缺省字段应保持默认值, 实际为 %s", cfg.WindowB)
	}
	if cfg.AppButton.Image != "nexus_app_download.png" {
		t.Errorf("缺省的按钮配置应保持默认值, 实际为 %s", cfg.AppButton.Image)
	}
}

func TestManagerClear(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	if err := manager.Save(Default()); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}
	if err := manager.Clear(); err != nil {
		t.Fatalf("清除配置失败: %v", err)
	}
	if manager.Exists() {
		t.Error("清除后配置文件不应存在")
	}
	if err := manager.Clear(); err != nil {
		t.Errorf("清除不存在的配置不应报错: %v", err)
	}
}

func TestManagerLoadNonExistent(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	cfg, err := manager.Load()
	if err != nil {
		t.Fatalf("加载不存在的配置不应报错: %v", err)
	}
	if cfg.WindowA != Default().WindowA {
		t.Errorf("应返回默认配置")
	}
}

func TestManagerLoadCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	manager := NewManagerWithDir(dir)

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("window_a: [unclosed"), 0644); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	cfg, err := manager.Load()
	if err == nil {
		t.Error("加载损坏的配置应返回错误")
	}
	if cfg == nil {
		t.Fatal("即使出错也应返回默认配置")
	}
	if cfg.WindowA != Default().WindowA {
		t.Errorf("出错时应返回默认配置, 实际为 %s", cfg.WindowA)
	}
}

func TestManagerLoadInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	manager := NewManagerWithDir(dir)

	if err := os.WriteFile(manager.GetConfigFile(), []byte("retry_pause: soon\n"), 0644); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}
	if _, err := manager.Load(); err == nil {
		t.Error("无效时长应返回错误")
	}
}

func TestManagerPaths(t *testing.T) {
	dir := t.TempDir()
	manager := NewManagerWithDir(dir)

	if manager.GetConfigDir() != dir {
		t.Errorf("GetConfigDir 应为 %s", dir)
	}
	if manager.GetConfigFile() != filepath.Join(dir, "config.yaml") {
		t.Errorf("GetConfigFile 错误: %s", manager.GetConfigFile())
	}

	file := filepath.Join(dir, "custom", "clicker.yaml")
	m2 := NewManagerWithFile(file)
	if m2.GetConfigDir() != filepath.Join(dir, "custom") {
		t.Errorf("NewManagerWithFile 目录错误: %s", m2.GetConfigDir())
	}
	if err := m2.Save(Default()); err != nil {
		t.Fatalf("保存到自定义路径失败: %v", err)
	}
	if !m2.Exists() {
		t.Error("自定义路径的配置文件应存在")
	}
}

func TestDefaultManager(t *testing.T) {
	manager := GetDefaultManager()
	if manager == nil {
		t.Fatal("GetDefaultManager 返回 nil")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("无法获取用户目录: %v", err)
	}
	expected := filepath.Join(homeDir, ".autoclicker")
	if manager.GetConfigDir() != expected {
		t.Errorf("默认配置目录应为 %s, 实际为 %s", expected, manager.GetConfigDir())
	}
}
