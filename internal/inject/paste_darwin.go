//go:build darwin

package inject

/*
#cgo LDFLAGS: -framework ApplicationServices -framework Carbon
#include <ApplicationServices/ApplicationServices.h>
#include <Carbon/Carbon.h>

static int postKey(CGKeyCode code, CGEventFlags flags, bool down) {
    CGEventSourceRef source = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
    if (source == NULL) {
        return -1;
    }
    CGEventRef ev = CGEventCreateKeyboardEvent(source, code, down);
    if (ev == NULL) {
        CFRelease(source);
        return -1;
    }
    CGEventSetFlags(ev, flags);
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
    CFRelease(source);
    return 0;
}

// Posts a down/up pair carrying one UTF-16 unit, ignoring the keyboard layout
static int postUnit(UniChar unit) {
    CGEventSourceRef source = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
    if (source == NULL) {
        return -1;
    }
    CGEventRef ev = CGEventCreateKeyboardEvent(source, 0, true);
    if (ev == NULL) {
        CFRelease(source);
        return -1;
    }
    CGEventKeyboardSetUnicodeString(ev, 1, &unit);
    CGEventPost(kCGHIDEventTap, ev);
    CGEventSetType(ev, kCGEventKeyUp);
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
    CFRelease(source);
    return 0;
}
*/
import "C"

import (
	"context"
	"errors"
	"unicode/utf16"
)

const (
	keyCommand = 55
	keyV       = 9
)

var errEventSource = errors.New("failed to create keyboard event")

// sendPasteShortcut sends Cmd+V on macOS
func sendPasteShortcut() error {
	steps := []struct {
		code C.CGKeyCode
		down bool
	}{
		{keyCommand, true},
		{keyV, true},
		{keyV, false},
		{keyCommand, false},
	}
	for _, s := range steps {
		var flags C.CGEventFlags
		if s.down {
			flags = C.kCGEventFlagMaskCommand
		}
		if C.postKey(s.code, flags, C.bool(s.down)) != 0 {
			return errEventSource
		}
	}
	return nil
}

func platformPaste(ctx context.Context, text string) error {
	return clipboardPaste(ctx, text, sendPasteShortcut)
}

// platformType types text one UTF-16 unit at a time using CGEvent
func platformType(ctx context.Context, text string) error {
	units := utf16.Encode([]rune(text))
	for i, u := range units {
		if err := ctx.Err(); err != nil {
			return err
		}
		if C.postUnit(C.UniChar(u)) != 0 {
			return errEventSource
		}
		if i < len(units)-1 {
			if err := sleep(ctx, keystrokeDelay); err != nil {
				return err
			}
		}
	}
	return nil
}
