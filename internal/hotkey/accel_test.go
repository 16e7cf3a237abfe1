package hotkey

import "testing"

func TestParseAccelerator(t *testing.T) {
	tests := []struct {
		input string
		mods  Modifier
		key   string
	}{
		{"scroll lock", 0, "scrolllock"},
		{"ScrollLock", 0, "scrolllock"},
		{"Scroll_Lock", 0, "scrolllock"},
		{"Alt+Space", ModAlt, "space"},
		{"ctrl+shift+F9", ModCtrl | ModShift, "f9"},
		{"Cmd + Option + d", ModSuper | ModAlt, "d"},
		{"esc", 0, "escape"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAccelerator(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Mods != tt.mods || got.Key != tt.key {
				t.Fatalf("expected mods=%b key=%s, got mods=%b key=%s", tt.mods, tt.key, got.Mods, got.Key)
			}
		})
	}
}

func TestParseAcceleratorErrors(t *testing.T) {
	for _, input := range []string{"", "Alt+", "Hyper+Space", "Alt+Banana", "+Space"} {
		if _, err := ParseAccelerator(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestAcceleratorString(t *testing.T) {
	acc, err := ParseAccelerator("shift+alt+space")
	if err != nil {
		t.Fatal(err)
	}
	if got := acc.String(); got != "Alt+Shift+space" {
		t.Errorf("unexpected string %q", got)
	}
}

func TestAcceleratorPlatformCodes(t *testing.T) {
	acc, _ := ParseAccelerator("scroll lock")
	if acc.x11Keysym() != "Scroll_Lock" {
		t.Errorf("unexpected keysym %s", acc.x11Keysym())
	}

	space, _ := ParseAccelerator("Space")
	if code, ok := space.darwinKeyCode(); !ok || code != 49 {
		t.Errorf("expected darwin key code 49, got %d", code)
	}

	menu, _ := ParseAccelerator("Menu")
	if _, ok := menu.darwinKeyCode(); ok {
		t.Error("menu key has no darwin key code")
	}
}

func TestEdgeFilter(t *testing.T) {
	f := newEdgeFilter()

	steps := []struct {
		pressed bool
		want    bool
	}{
		{false, false}, // release without press
		{true, true},
		{true, false}, // auto-repeat
		{true, false},
		{false, true},
		{false, false},
		{true, true},
	}
	for i, s := range steps {
		if got := f.accept(65, s.pressed); got != s.want {
			t.Fatalf("step %d: accept(%v) = %v, want %v", i, s.pressed, got, s.want)
		}
	}

	f.reset(65)
	if f.accept(65, false) {
		t.Fatal("release after reset should be dropped")
	}
}
