//go:build linux

package hotkey

/*
#cgo pkg-config: x11
#include <X11/Xlib.h>
#include <X11/XKBlib.h>
#include <X11/keysym.h>
#include <stdlib.h>

static Display* displayPtr = NULL;

static int openDisplay() {
    if (displayPtr != NULL) return 1;
    XInitThreads();
    displayPtr = XOpenDisplay(NULL);
    if (displayPtr == NULL) return 0;

    // Held keys send repeated KeyPress without synthetic KeyRelease
    XkbSetDetectableAutoRepeat(displayPtr, True, NULL);
    XSelectInput(displayPtr, DefaultRootWindow(displayPtr), KeyPressMask | KeyReleaseMask);
    return 1;
}

static int keycodeFor(const char* name) {
    KeySym sym = XStringToKeysym(name);
    if (sym == NoSymbol) return 0;
    return XKeysymToKeycode(displayPtr, sym);
}

// Grab with and without CapsLock/NumLock so they do not defeat the hotkey
static void grabKey(int keycode, unsigned int modifiers) {
    Window root = DefaultRootWindow(displayPtr);
    unsigned int extra[] = {0, LockMask, Mod2Mask, LockMask | Mod2Mask};
    for (int i = 0; i < 4; i++) {
        XGrabKey(displayPtr, keycode, modifiers | extra[i], root, False, GrabModeAsync, GrabModeAsync);
    }
    XSync(displayPtr, False);
}

static void ungrabKey(int keycode, unsigned int modifiers) {
    Window root = DefaultRootWindow(displayPtr);
    unsigned int extra[] = {0, LockMask, Mod2Mask, LockMask | Mod2Mask};
    for (int i = 0; i < 4; i++) {
        XUngrabKey(displayPtr, keycode, modifiers | extra[i], root);
    }
    XSync(displayPtr, False);
}

static int checkEvent(int* keycode, int* pressed) {
    if (displayPtr == NULL) return 0;

    XEvent event;
    while (XPending(displayPtr) > 0) {
        XNextEvent(displayPtr, &event);
        if (event.type == KeyPress || event.type == KeyRelease) {
            *keycode = event.xkey.keycode;
            *pressed = (event.type == KeyPress) ? 1 : 0;
            return 1;
        }
    }
    return 0;
}

static void closeDisplay() {
    if (displayPtr != NULL) {
        XCloseDisplay(displayPtr);
        displayPtr = NULL;
    }
}
*/
import "C"

import (
	"fmt"
	"sync"
	"time"
	"unsafe"
)

type grab struct {
	keycode   int
	modifiers C.uint
}

type linuxManager struct {
	mu        sync.Mutex
	callbacks map[int]func(bool)
	grabs     map[string]grab
	edges     *edgeFilter
	stop      chan struct{}
	done      chan struct{}
}

// New creates a new Linux hotkey manager using X11
func New() (Manager, error) {
	if C.openDisplay() == 0 {
		return nil, fmt.Errorf("failed to open X display")
	}

	mgr := &linuxManager{
		callbacks: make(map[int]func(bool)),
		grabs:     make(map[string]grab),
		edges:     newEdgeFilter(),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	go mgr.eventLoop()

	return mgr, nil
}

func x11Modifiers(m Modifier) C.uint {
	var mask C.uint
	if m&ModShift != 0 {
		mask |= C.ShiftMask
	}
	if m&ModCtrl != 0 {
		mask |= C.ControlMask
	}
	if m&ModAlt != 0 {
		mask |= C.Mod1Mask
	}
	if m&ModSuper != 0 {
		mask |= C.Mod4Mask
	}
	return mask
}

func (m *linuxManager) Register(accel string, callback func(pressed bool)) error {
	acc, err := ParseAccelerator(accel)
	if err != nil {
		return err
	}

	name := C.CString(acc.x11Keysym())
	defer C.free(unsafe.Pointer(name))

	m.mu.Lock()
	defer m.mu.Unlock()

	keycode := int(C.keycodeFor(name))
	if keycode == 0 {
		return fmt.Errorf("no keycode for %s on this keyboard", acc)
	}

	g := grab{keycode: keycode, modifiers: x11Modifiers(acc.Mods)}
	C.grabKey(C.int(g.keycode), g.modifiers)

	m.callbacks[keycode] = callback
	m.grabs[accel] = g
	return nil
}

func (m *linuxManager) eventLoop() {
	defer close(m.done)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			var keycode, pressed C.int

			m.mu.Lock()
			ok := C.checkEvent(&keycode, &pressed) != 0
			cb := m.callbacks[int(keycode)]
			m.mu.Unlock()

			if ok && cb != nil && m.edges.accept(int(keycode), pressed == 1) {
				cb(pressed == 1)
			}
		}
	}
}

func (m *linuxManager) Unregister(accel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.grabs[accel]
	if !ok {
		return fmt.Errorf("hotkey %s not registered", accel)
	}
	C.ungrabKey(C.int(g.keycode), g.modifiers)
	delete(m.grabs, accel)
	delete(m.callbacks, g.keycode)
	m.edges.reset(g.keycode)
	return nil
}

func (m *linuxManager) Close() error {
	close(m.stop)
	<-m.done

	m.mu.Lock()
	defer m.mu.Unlock()
	C.closeDisplay()
	return nil
}
