package inject

import (
	"context"
	"errors"
)

// ErrTypeUnsupported is returned where keystroke typing is not available
var ErrTypeUnsupported = errors.New("keystroke typing not supported on this platform")

// Injector defines the interface for text injection into the focused window
type Injector interface {
	Paste(ctx context.Context, text string) error
	Type(ctx context.Context, text string) error
	PasteOrType(ctx context.Context, text string) error
}
