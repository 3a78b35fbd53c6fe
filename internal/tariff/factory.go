package tariff

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/ppiankov/customsdoc/internal/cache"
	"github.com/ppiankov/customsdoc/internal/model"
	"github.com/ppiankov/customsdoc/internal/worker"
)

// Source names accepted in tariff.source
const (
	SourceStatic   = "static"
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Opened is a configured registry plus the resources it holds
type Opened struct {
	Registry
	closers []io.Closer
}

// Close releases database and cache connections
func (o *Opened) Close() error {
	var errs []error
	for _, c := range o.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open builds the registry selected by cfg. Remote backends (http, postgres)
// are wrapped in a cache when cfg.Cache.Enabled; an unreachable Redis tier is
// logged and skipped.
func Open(ctx context.Context, cfg model.TariffConfig, logger zerolog.Logger) (*Opened, error) {
	opened := &Opened{}

	var namespace string
	switch cfg.Source {
	case "", SourceStatic:
		opened.Registry = NewDefaultRegistry()
		return opened, nil

	case SourceFile:
		reg, err := LoadFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("path", cfg.Path).Int("codes", reg.Len()).Msg("loaded tariff file")
		opened.Registry = reg
		return opened, nil

	case SourceHTTP:
		limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)
		reg, err := NewHTTPRegistry(cfg.URL, cfg.HTTPProxy, cfg.Timeout,
			WithLimiter(limiter), WithUserAgent(cfg.UserAgent), WithRobotsTxt(cfg.Robots))
		if err != nil {
			return nil, err
		}
		opened.Registry = reg
		namespace = cfg.URL

	case SourcePostgres:
		reg, err := OpenPostgres(ctx, cfg.DSN, cfg.Table)
		if err != nil {
			return nil, err
		}
		opened.Registry = reg
		opened.closers = append(opened.closers, reg)
		namespace = cfg.DSN + "/" + cfg.Table

	default:
		return nil, fmt.Errorf("unknown tariff source %q (want static, file, http or postgres)", cfg.Source)
	}

	if !cfg.Cache.Enabled {
		return opened, nil
	}

	layered := cache.NewDefaultLayered(cfg.Cache.MemoryTTL, cfg.Cache.DiskDir, cfg.Cache.DiskTTL)
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.DialRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.DiskTTL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis cache disabled")
		} else {
			layered.Add(rc)
			opened.closers = append(opened.closers, rc)
		}
	}

	opened.Registry = NewCachedRegistry(opened.Registry, layered, namespace, 0)
	return opened, nil
}
