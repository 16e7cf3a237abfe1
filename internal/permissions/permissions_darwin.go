//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework AVFoundation -framework Cocoa
#import <AVFoundation/AVFoundation.h>
#import <Cocoa/Cocoa.h>

int checkMicrophonePermission() {
    AVAuthorizationStatus status = [AVCaptureDevice authorizationStatusForMediaType:AVMediaTypeAudio];
    return (int)status;
}

void requestMicrophonePermission() {
    [AVCaptureDevice requestAccessForMediaType:AVMediaTypeAudio completionHandler:^(BOOL granted) {}];
}

int checkAccessibilityPermission() {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: @YES};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}
*/
import "C"

import "errors"

var (
	ErrMicrophoneDenied    = errors.New("microphone permission not granted")
	ErrAccessibilityDenied = errors.New("accessibility permission not granted (System Settings > Privacy & Security > Accessibility)")
)

const (
	microphoneNotDetermined = 0
	microphoneAuthorized    = 3
)

// EnsurePermissions checks microphone and accessibility access, triggering
// the system prompts for whichever is missing.
func EnsurePermissions() error {
	switch int(C.checkMicrophonePermission()) {
	case microphoneAuthorized:
	case microphoneNotDetermined:
		C.requestMicrophonePermission()
		return ErrMicrophoneDenied
	default:
		return ErrMicrophoneDenied
	}

	// Hotkeys and synthetic paste need accessibility; the check prompts
	if C.checkAccessibilityPermission() != 1 {
		return ErrAccessibilityDenied
	}

	return nil
}
