package repository

import "io/fs"

// Option applies a configuration option to the file-backed stores.
type Option func(*fileOptions)

type fileOptions struct {
	perm fs.FileMode
	sync bool
}

func defaultFileOptions() fileOptions {
	return fileOptions{perm: 0o644}
}

// WithFileMode sets the permission bits of newly created files.
func WithFileMode(perm fs.FileMode) Option {
	return func(o *fileOptions) {
		if perm != 0 {
			o.perm = perm
		}
	}
}

// WithSync fsyncs every write before returning.
func WithSync(enabled bool) Option {
	return func(o *fileOptions) {
		o.sync = enabled
	}
}
