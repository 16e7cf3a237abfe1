//go:build !linux && !darwin

package hotkey

// New reports that this platform has no global hotkey backend
func New() (Manager, error) {
	return nil, ErrUnsupported
}
