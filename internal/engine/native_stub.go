//go:build !whisper

package engine

// NativeAvailable reports whether the whisper.cpp bindings are compiled in.
func NativeAvailable() bool { return false }

// NewNative returns ErrNativeUnavailable when the native backend is not built.
func NewNative(modelPath string) (Engine, error) {
	return nil, ErrNativeUnavailable
}
