//go:build darwin

package permissions

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework ApplicationServices -framework CoreGraphics
#include <stdlib.h>
#import <Cocoa/Cocoa.h>
#import <ApplicationServices/ApplicationServices.h>
#import <CoreGraphics/CoreGraphics.h>

static int accessibilityTrusted(int prompt) {
    NSDictionary *options = @{(__bridge NSString *)kAXTrustedCheckOptionPrompt: prompt ? @YES : @NO};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}

static int screenCaptureAllowed() {
    if (@available(macOS 10.15, *)) {
        return CGPreflightScreenCaptureAccess() ? 1 : 0;
    }
    return 1;
}

static void openPrivacyPane(const char *pane) {
    NSString *url = [NSString stringWithFormat:@"x-apple.systempreferences:com.apple.preference.security?%s", pane];
    [[NSWorkspace sharedWorkspace] openURL:[NSURL URLWithString:url]];
}
*/
import "C"

import "unsafe"

// Check 检查权限（不触发系统弹窗）
func Check() Status {
	return Status{
		Accessibility:   C.accessibilityTrusted(0) == 1,
		ScreenRecording: C.screenCaptureAllowed() == 1,
	}
}

// OpenSettings 触发辅助功能授权弹窗，并打开缺少权限对应的设置页面
func OpenSettings(s Status) {
	if !s.Accessibility {
		C.accessibilityTrusted(1)
		openPane("Privacy_Accessibility")
	}
	if !s.ScreenRecording {
		openPane("Privacy_ScreenCapture")
	}
}

func openPane(name string) {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	C.openPrivacyPane(cs)
}
