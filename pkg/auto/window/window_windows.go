//go:build windows

package window

import (
	"errors"
	"sync"
	"syscall"
	"unsafe"

	"github.com/zoeyai/autoclicker/pkg/auto"
	"github.com/zoeyai/autoclicker/pkg/process"
)

var (
	user32                       = syscall.NewLazyDLL("user32.dll")
	kernel32                     = syscall.NewLazyDLL("kernel32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsIconic                 = user32.NewProc("IsIconic")
	procIsWindow                 = user32.NewProc("IsWindow")
	procGetWindowLongW           = user32.NewProc("GetWindowLongW")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procShowWindow               = user32.NewProc("ShowWindow")
	procBringWindowToTop         = user32.NewProc("BringWindowToTop")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procAttachThreadInput        = user32.NewProc("AttachThreadInput")
	procGetCurrentThreadId       = kernel32.NewProc("GetCurrentThreadId")
)

const (
	gwlStyle   = ^uintptr(15) // -16
	gwlExStyle = ^uintptr(19) // -20

	wsVisible      uintptr = 0x10000000
	wsExToolWindow uintptr = 0x00000080
	wsExAppWindow  uintptr = 0x00040000

	swMinimize = 6
	swRestore  = 9
	swShow     = 5

	minWindowSize = 50
)

var errInvalidHandle = errors.New("窗口句柄已失效")

// rect Windows 矩形结构
type rect struct {
	Left, Top, Right, Bottom int32
}

// syscall.NewCallback 每个进程最多只能创建约 2000 个，主循环会反复枚举窗口，
// 所以只创建一次回调，通过包级状态收集结果
var (
	enumMu       sync.Mutex
	enumHandles  []syscall.Handle
	enumCallback = syscall.NewCallback(func(hwnd syscall.Handle, _ uintptr) uintptr {
		enumHandles = append(enumHandles, hwnd)
		return 1
	})
)

// win32Backend 基于 user32 的窗口系统绑定
type win32Backend struct{}

// NewBackend 返回当前平台的窗口系统绑定
func NewBackend() Backend {
	return win32Backend{}
}

// enumTopLevel 枚举所有顶级窗口句柄
func enumTopLevel() []syscall.Handle {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumHandles = make([]syscall.Handle, 0, 256)
	procEnumWindows.Call(enumCallback, 0)
	out := enumHandles
	enumHandles = nil
	return out
}

// Windows 枚举可见的应用窗口
func (win32Backend) Windows() ([]WindowInfo, error) {
	foreground, _, _ := procGetForegroundWindow.Call()

	var windows []WindowInfo
	for _, hwnd := range enumTopLevel() {
		ret, _, _ := procIsWindowVisible.Call(uintptr(hwnd))
		if ret == 0 {
			continue
		}

		style, _, _ := procGetWindowLongW.Call(uintptr(hwnd), gwlStyle)
		exStyle, _, _ := procGetWindowLongW.Call(uintptr(hwnd), gwlExStyle)
		if style&wsVisible == 0 {
			continue
		}
		// 跳过工具窗口（除非它有 APPWINDOW 样式）
		if exStyle&wsExToolWindow != 0 && exStyle&wsExAppWindow == 0 {
			continue
		}

		info, ok := describe(hwnd)
		if !ok {
			continue
		}
		// 最小化窗口的矩形是任务栏上的小块，不能按尺寸过滤
		if !info.Minimized && (info.Bounds.Width < minWindowSize || info.Bounds.Height < minWindowSize) {
			continue
		}
		info.Active = uintptr(hwnd) == foreground
		windows = append(windows, info)
	}
	return windows, nil
}

// ActiveWindow 返回前台窗口
func (win32Backend) ActiveWindow() (*WindowInfo, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return nil, nil
	}
	info, ok := describe(syscall.Handle(hwnd))
	if !ok {
		return nil, nil
	}
	info.Active = true
	return &info, nil
}

// Restore 还原窗口
func (win32Backend) Restore(w WindowInfo) error {
	hwnd, err := handleOf(w)
	if err != nil {
		return err
	}
	if iconic, _, _ := procIsIconic.Call(hwnd); iconic != 0 {
		procShowWindow.Call(hwnd, swRestore)
	} else {
		procShowWindow.Call(hwnd, swShow)
	}
	return nil
}

// Minimize 最小化窗口
func (win32Backend) Minimize(w WindowInfo) error {
	hwnd, err := handleOf(w)
	if err != nil {
		return err
	}
	procShowWindow.Call(hwnd, swMinimize)
	return nil
}

// Focus 请求把窗口置于前台。
// 附加到前台线程和目标线程的输入队列后再调用 SetForegroundWindow，
// 否则后台进程的请求通常只会让任务栏按钮闪烁
func (win32Backend) Focus(w WindowInfo) error {
	hwnd, err := handleOf(w)
	if err != nil {
		return err
	}

	foregroundHwnd, _, _ := procGetForegroundWindow.Call()
	var foregroundThreadId uintptr
	if foregroundHwnd != 0 {
		foregroundThreadId, _, _ = procGetWindowThreadProcessId.Call(foregroundHwnd, 0)
	}

	currentThreadId, _, _ := procGetCurrentThreadId.Call()
	targetThreadId, _, _ := procGetWindowThreadProcessId.Call(hwnd, 0)

	if foregroundThreadId != 0 && foregroundThreadId != currentThreadId {
		procAttachThreadInput.Call(currentThreadId, foregroundThreadId, 1)
		defer procAttachThreadInput.Call(currentThreadId, foregroundThreadId, 0)
	}
	if targetThreadId != 0 && targetThreadId != currentThreadId {
		procAttachThreadInput.Call(currentThreadId, targetThreadId, 1)
		defer procAttachThreadInput.Call(currentThreadId, targetThreadId, 0)
	}

	procBringWindowToTop.Call(hwnd)
	ret, _, callErr := procSetForegroundWindow.Call(hwnd)
	if ret == 0 {
		return callErr
	}
	return nil
}

// handleOf 校验句柄仍然有效
func handleOf(w WindowInfo) (uintptr, error) {
	if w.Handle == 0 {
		return 0, errInvalidHandle
	}
	if ok, _, _ := procIsWindow.Call(w.Handle); ok == 0 {
		return 0, errInvalidHandle
	}
	return w.Handle, nil
}

// describe 读取窗口标题、进程、边界和最小化状态
func describe(hwnd syscall.Handle) (WindowInfo, bool) {
	length, _, _ := procGetWindowTextLengthW.Call(uintptr(hwnd))
	if length == 0 {
		return WindowInfo{}, false
	}

	// UTF-16 标题，直接转换避免中文乱码
	buf := make([]uint16, length+1)
	procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(length+1))
	title := syscall.UTF16ToString(buf)
	if title == "" {
		return WindowInfo{}, false
	}

	var pid uint32
	procGetWindowThreadProcessId.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&pid)))

	var r rect
	procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	bounds := auto.Coords().RegionToScreen(auto.Region{
		X: int(r.Left), Y: int(r.Top), Width: int(r.Right - r.Left), Height: int(r.Bottom - r.Top),
	})

	iconic, _, _ := procIsIconic.Call(uintptr(hwnd))

	return WindowInfo{
		Handle:    uintptr(hwnd),
		PID:       int(pid),
		Title:     title,
		OwnerName: process.NameOf(int(pid)),
		Bounds:    bounds,
		Minimized: iconic != 0,
	}, true
}
