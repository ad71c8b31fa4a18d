package viewer

import "context"

// Host owns the fullscreen state of the viewer's display. The controller asks
// it for a state and stores whatever the host reports back.
type Host interface {
	SetFullscreen(ctx context.Context, active bool) (bool, error)
}

// HostFunc adapts a function to Host.
type HostFunc func(ctx context.Context, active bool) (bool, error)

func (f HostFunc) SetFullscreen(ctx context.Context, active bool) (bool, error) {
	return f(ctx, active)
}

// ClientHost grants every request. The remote client is the real host and
// corrects the state later through Controller.FullscreenChanged.
type ClientHost struct{}

func (ClientHost) SetFullscreen(_ context.Context, active bool) (bool, error) {
	return active, nil
}
