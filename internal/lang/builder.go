package lang

import (
	"log/slog"
	"path/filepath"
)

// Builder assembles the language runtime for a build. It holds no state
// between calls, so one Builder may serve concurrent builds.
type Builder struct {
	logger *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBuilderLogger sets the logger used for build progress.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ClientPath returns where Build writes the client module for outDir.
func ClientPath(outDir string) string {
	return filepath.Join(outDir, ClientFileName)
}

// Build plans the extensions for spec, registers them into a fresh Runtime,
// writes the matching client module to outDir and returns the index factory.
// The default language returns a nil factory and a client module with no
// registrations. An unknown code fails before anything is written.
func (b *Builder) Build(outDir string, spec Spec) (IndexFactory, error) {
	spec = spec.Normalize()

	plan, err := PlanFor(spec)
	if err != nil {
		return nil, err
	}

	rt := NewRuntime()
	if err := plan.Apply(rt); err != nil {
		return nil, err
	}

	path, err := writeClient(outDir, RenderClient(plan))
	if err != nil {
		return nil, err
	}

	b.logger.Debug("search runtime assembled",
		slog.String("language", spec.String()),
		slog.Any("extensions", plan.Names()),
		slog.String("client", path))

	switch {
	case spec.IsDefault():
		return nil, nil
	case spec.IsMulti():
		return rt.MultiLanguage(spec.extensionCodes()...)
	default:
		return rt.Language(spec.codes[0])
	}
}
