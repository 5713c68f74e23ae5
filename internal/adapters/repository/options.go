package repository

// Option applies a configuration option to the ImageStore.
type Option func(*ImageStore)

// WithReleaseFunc sets a hook invoked exactly once for every image
// dropped when its generation is superseded.
func WithReleaseFunc(release func(tileKey string, image []byte)) Option {
	return func(s *ImageStore) {
		s.release = release
	}
}
