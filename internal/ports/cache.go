package ports

import (
	"context"
	"time"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
)

// ClusterSnapshotCache keeps the last successful cluster listing across restarts.
type ClusterSnapshotCache interface {
	SaveClusters(ctx context.Context, clusters []model.ClusterInfo, fetchedAt time.Time) error
	// LoadClusters reports ok=false when nothing is cached.
	LoadClusters(ctx context.Context) (snap model.ClusterSnapshot, ok bool, err error)
	Invalidate(ctx context.Context) error
}
