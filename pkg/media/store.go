package media

import (
	"context"
	"fmt"

	"github.com/Payphone-Digital/vidtube/config"
	"github.com/Payphone-Digital/vidtube/pkg/pool"
)

// NewStore builds the object store named by cfg.Driver. Connections to the
// host come from conns.
func NewStore(ctx context.Context, cfg config.MediaConfig, conns *pool.ConnectionPool) (ObjectStore, error) {
	switch cfg.Driver {
	case "", "minio":
		return NewMinioStore(ctx, cfg, conns)
	case "s3":
		return NewS3Store(ctx, cfg, conns)
	default:
		return nil, fmt.Errorf("unsupported media driver %q", cfg.Driver)
	}
}
