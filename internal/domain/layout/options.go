// Package layout places one light per entry inside a padded viewport.
package layout

// Default placement configuration.
const (
	DefaultSafePaddingPx = 24.0
	DefaultMinDistancePx = 18.0
	DefaultMaxTries      = 80
)

// Options configures placement.
type Options struct {
	// SafePaddingPx is the margin on every side excluded from placement.
	SafePaddingPx float64
	// MinDistancePx is the desired separation between any two lights.
	MinDistancePx float64
	// MaxTries is the number of candidates drawn per light.
	MaxTries int
}

// Defaults returns the default placement options.
func Defaults() Options {
	return Options{
		SafePaddingPx: DefaultSafePaddingPx,
		MinDistancePx: DefaultMinDistancePx,
		MaxTries:      DefaultMaxTries,
	}
}

// Option applies a configuration option to Options.
type Option func(*Options)

// WithSafePadding sets the padding margin in pixels. Negative values are ignored.
func WithSafePadding(px float64) Option {
	return func(o *Options) {
		if px >= 0 {
			o.SafePaddingPx = px
		}
	}
}

// WithMinDistance sets the desired minimum separation in pixels.
// Zero disables rejection entirely.
func WithMinDistance(px float64) Option {
	return func(o *Options) {
		if px >= 0 {
			o.MinDistancePx = px
		}
	}
}

// WithMaxTries sets the per-light candidate budget. Zero means every
// light falls back to the center of the usable area.
func WithMaxTries(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.MaxTries = n
		}
	}
}

// WithOptions replaces all settings at once, typically from configuration.
func WithOptions(in Options) Option {
	return func(o *Options) {
		WithSafePadding(in.SafePaddingPx)(o)
		WithMinDistance(in.MinDistancePx)(o)
		WithMaxTries(in.MaxTries)(o)
	}
}

func resolve(opts []Option) Options {
	o := Defaults()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
