package gojaprotoview

import (
	"google.golang.org/protobuf/reflect/protoregistry"
)

// moduleOptions collects the fallback registries a [Module] resolves
// types and files against. Descriptor sets loaded at runtime always land
// in the module's own local registries; these control only where lookup
// goes when the local registries miss.
type moduleOptions struct {
	resolver *protoregistry.Types
	files    *protoregistry.Files
}

// Option configures a [Module] at construction time.
type Option interface {
	applyOption(*moduleOptions) error
}

type optionFunc func(*moduleOptions) error

func (fn optionFunc) applyOption(opts *moduleOptions) error { return fn(opts) }

// WithResolver overrides the type registry consulted after the module's
// local registry misses, [protoregistry.GlobalTypes] by default. Types
// linked into the binary (generated code, well-known types) resolve
// through this fallback.
func WithResolver(resolver *protoregistry.Types) Option {
	return optionFunc(func(opts *moduleOptions) error {
		opts.resolver = resolver
		return nil
	})
}

// WithFiles overrides the file registry used to resolve descriptor
// dependencies of loaded files, [protoregistry.GlobalFiles] by default.
// Pair with [WithResolver] to fully isolate a module from the
// process-global registries.
func WithFiles(files *protoregistry.Files) Option {
	return optionFunc(func(opts *moduleOptions) error {
		opts.files = files
		return nil
	})
}

func resolveOptions(opts []Option) (*moduleOptions, error) {
	cfg := &moduleOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
