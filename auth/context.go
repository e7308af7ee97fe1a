package auth

import "context"

type ctxMarker struct{}

var (
	ctxMarkerKey = &ctxMarker{}
)

// Context decorates a context with an auth.Info built from opts.
func Context(ctx context.Context, opts ...ContextOpt) context.Context {
	var info Info

	for _, opt := range opts {
		opt(&info)
	}

	return info.WithContext(ctx)
}

// User returns the auth.Info stored in a context. It's the zero Info if the
// request wasn't authenticated.
func User(ctx context.Context) Info {
	info, ok := ctx.Value(ctxMarkerKey).(Info)
	if !ok {
		return Info{}
	}
	return info
}

// ContextOpt values are passed to auth.Context to construct an auth.Info object
type ContextOpt func(*Info)

// ID sets the auth.Info's ID
func ID(id string) ContextOpt {
	return func(info *Info) {
		info.ID = id
	}
}

// Profile sets the auth.Info's email, display name and avatar URL.
func Profile(email, name, picture string) ContextOpt {
	return func(info *Info) {
		info.Email = email
		info.Name = name
		info.Picture = picture
	}
}
