//go:build darwin

package hotkey

/*
#cgo LDFLAGS: -framework Carbon
#include <Carbon/Carbon.h>

extern void goHotkeyCallback(UInt32 id, int pressed);

static EventHandlerRef handlerRef = NULL;

static OSStatus hotkeyHandler(EventHandlerCallRef nextHandler, EventRef theEvent, void* userData) {
    EventHotKeyID hkRef;
    GetEventParameter(theEvent, kEventParamDirectObject, typeEventHotKeyID, NULL, sizeof(hkRef), NULL, &hkRef);

    UInt32 eventKind = GetEventKind(theEvent);
    int pressed = (eventKind == kEventHotKeyPressed) ? 1 : 0;

    goHotkeyCallback(hkRef.id, pressed);

    return noErr;
}

static void installHandler() {
    if (handlerRef != NULL) return;

    EventTypeSpec eventTypes[2];
    eventTypes[0].eventClass = kEventClassKeyboard;
    eventTypes[0].eventKind = kEventHotKeyPressed;
    eventTypes[1].eventClass = kEventClassKeyboard;
    eventTypes[1].eventKind = kEventHotKeyReleased;

    InstallApplicationEventHandler(NewEventHandlerUPP(hotkeyHandler), 2, eventTypes, NULL, &handlerRef);
}

static EventHotKeyRef registerHotkey(UInt32 id, UInt32 keyCode, UInt32 modifiers) {
    EventHotKeyRef hotKeyRef = NULL;
    EventHotKeyID hotKeyID;
    hotKeyID.signature = 'wptt';
    hotKeyID.id = id;

    OSStatus status = RegisterEventHotKey(keyCode, modifiers, hotKeyID, GetApplicationEventTarget(), 0, &hotKeyRef);
    return (status == noErr) ? hotKeyRef : NULL;
}

static void unregisterHotkey(EventHotKeyRef ref) {
    UnregisterEventHotKey(ref);
}
*/
import "C"

import (
	"fmt"
	"sync"
)

type darwinHotkey struct {
	id       int
	ref      C.EventHotKeyRef
	callback func(bool)
}

type darwinManager struct {
	mu      sync.Mutex
	nextID  int
	hotkeys map[string]*darwinHotkey
	byID    map[int]*darwinHotkey
	edges   *edgeFilter
}

// Carbon callbacks carry no Go context; only one manager exists per process
var (
	globalMu      sync.Mutex
	globalManager *darwinManager
)

// New creates a new macOS hotkey manager using Carbon
func New() (Manager, error) {
	mgr := &darwinManager{
		hotkeys: make(map[string]*darwinHotkey),
		byID:    make(map[int]*darwinHotkey),
		edges:   newEdgeFilter(),
	}

	globalMu.Lock()
	globalManager = mgr
	globalMu.Unlock()

	C.installHandler()
	return mgr, nil
}

//export goHotkeyCallback
func goHotkeyCallback(id C.UInt32, pressed C.int) {
	globalMu.Lock()
	mgr := globalManager
	globalMu.Unlock()
	if mgr == nil {
		return
	}

	mgr.mu.Lock()
	hk := mgr.byID[int(id)]
	mgr.mu.Unlock()

	if hk != nil && mgr.edges.accept(hk.id, pressed == 1) {
		hk.callback(pressed == 1)
	}
}

func carbonModifiers(m Modifier) C.UInt32 {
	var mask C.UInt32
	if m&ModSuper != 0 {
		mask |= 0x100 // cmdKey
	}
	if m&ModShift != 0 {
		mask |= 0x200 // shiftKey
	}
	if m&ModAlt != 0 {
		mask |= 0x800 // optionKey
	}
	if m&ModCtrl != 0 {
		mask |= 0x1000 // controlKey
	}
	return mask
}

func (m *darwinManager) Register(accel string, callback func(pressed bool)) error {
	acc, err := ParseAccelerator(accel)
	if err != nil {
		return err
	}
	keyCode, ok := acc.darwinKeyCode()
	if !ok {
		return fmt.Errorf("hotkey %s has no macOS key code", acc)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	ref := C.registerHotkey(C.UInt32(m.nextID), C.UInt32(keyCode), carbonModifiers(acc.Mods))
	if ref == nil {
		return fmt.Errorf("failed to register hotkey %s", acc)
	}

	hk := &darwinHotkey{id: m.nextID, ref: ref, callback: callback}
	m.hotkeys[accel] = hk
	m.byID[hk.id] = hk
	return nil
}

func (m *darwinManager) Unregister(accel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hk, ok := m.hotkeys[accel]
	if !ok {
		return fmt.Errorf("hotkey %s not registered", accel)
	}
	C.unregisterHotkey(hk.ref)
	delete(m.hotkeys, accel)
	delete(m.byID, hk.id)
	m.edges.reset(hk.id)
	return nil
}

func (m *darwinManager) Close() error {
	m.mu.Lock()
	for accel, hk := range m.hotkeys {
		C.unregisterHotkey(hk.ref)
		delete(m.hotkeys, accel)
		delete(m.byID, hk.id)
	}
	m.mu.Unlock()

	globalMu.Lock()
	if globalManager == m {
		globalManager = nil
	}
	globalMu.Unlock()
	return nil
}
