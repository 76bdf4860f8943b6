package bridge

import (
	"context"
	"log/slog"
	"os"

	"github.com/eghact/eghact/internal/errors"
)

// Init returns the accelerated backend when cfg enables it and the module
// loads, and the software backend otherwise. Load failures are logged as
// warnings with code E030.
func Init(ctx context.Context, cfg Config, logger *slog.Logger, opts ...Option) Backend {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append(opts, WithLogger(logger))

	if !cfg.Enabled {
		logger.Debug("accelerated backend disabled")
		return NewSoftware(opts...)
	}

	w, err := load(ctx, cfg.ModulePath, opts)
	if err != nil {
		ee := errors.FromError(err, errors.CodeBridgeLoadFailed)
		logger.Warn("accelerated backend unavailable, using software backend",
			"code", ee.Code,
			"module", cfg.ModulePath,
			"error", err,
		)
		return NewSoftware(opts...)
	}
	logger.Info("accelerated backend loaded", "module", cfg.ModulePath)
	return w
}

func load(ctx context.Context, path string, opts []Option) (*Wasm, error) {
	if path == "" {
		return nil, errors.New(errors.CodeBridgeLoadFailed).
			WithSuggestion("Set bridge.module_path to the accelerated module")
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeBridgeLoadFailed).WithSubject(path).Wrap(err)
	}
	w, err := NewWasm(ctx, code, opts...)
	if err != nil {
		return nil, errors.New(errors.CodeBridgeLoadFailed).WithSubject(path).Wrap(err)
	}
	return w, nil
}
