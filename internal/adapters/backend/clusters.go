package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	apperrors "github.com/clustermaster/clustermaster-ui/internal/errors"
)

// clusterListEntry accepts both the plain-name and the object form of a list entry.
type clusterListEntry struct {
	model.ClusterInfo
}

func (e *clusterListEntry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &e.Name)
	}
	return json.Unmarshal(b, &e.ClusterInfo)
}

type clusterListResponse struct {
	Clusters []clusterListEntry `json:"clusters"`
	Error    string             `json:"error,omitempty"`
}

func (r *clusterListResponse) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &r.Clusters)
	}
	type plain clusterListResponse
	return json.Unmarshal(b, (*plain)(r))
}

type clusterStatusResponse struct {
	ClusterName string              `json:"cluster_name"`
	Status      model.ClusterStatus `json:"status"`
	Nodes       string              `json:"nodes"`
	Error       string              `json:"error,omitempty"`
}

// ListClusters returns every cluster known to the backend in list order. Entries
// that arrive without a status are resolved with concurrent status calls; a
// failed status call leaves that cluster as unknown rather than failing the list.
func (c *Client) ListClusters(ctx context.Context) ([]model.ClusterInfo, error) {
	var resp clusterListResponse
	if err := c.do(ctx, call{op: "clusters.list", method: http.MethodGet, path: c.api("local-cluster", "list"), out: &resp}); err != nil {
		return nil, err
	}
	if resp.Error != "" && len(resp.Clusters) == 0 {
		return nil, apperrors.Unavailable("list clusters: " + resp.Error)
	}

	out := make([]model.ClusterInfo, len(resp.Clusters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, entry := range resp.Clusters {
		out[i] = entry.ClusterInfo
		if entry.Name == "" || entry.Status != "" {
			continue
		}
		g.Go(func() error {
			info, err := c.ClusterStatus(gctx, entry.Name)
			if err != nil {
				c.logger.WarnContext(ctx, "cluster status unavailable", "cluster", entry.Name, "error", err)
				out[i].Status = model.ClusterStatusUnknown
				return nil
			}
			out[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCanceled, "list clusters")
	}
	return out, nil
}

// ClusterStatus fetches the status and node summary of one cluster.
func (c *Client) ClusterStatus(ctx context.Context, name string) (model.ClusterInfo, error) {
	var resp clusterStatusResponse
	err := c.do(ctx, call{
		op:     "clusters.status",
		method: http.MethodGet,
		path:   c.api("local-cluster", name, "status"),
		out:    &resp,
	})
	if err != nil {
		return model.ClusterInfo{}, err
	}
	if resp.Error != "" {
		return model.ClusterInfo{Name: name, Status: model.ClusterStatusUnknown},
			apperrors.NotFoundf("cluster %s: %s", name, resp.Error)
	}

	info := model.ClusterInfo{Name: resp.ClusterName, Status: resp.Status, Nodes: resp.Nodes}
	if info.Name == "" {
		info.Name = name
	}
	if info.Status == "" {
		info.Status = model.ClusterStatusUnknown
	}
	return info, nil
}

// CreateCluster asks the backend to provision a new cluster.
func (c *Client) CreateCluster(ctx context.Context, req model.ClusterCreateRequest) (model.ClusterResponse, error) {
	var resp struct {
		model.ClusterResponse
		Error string `json:"error,omitempty"`
	}
	err := c.do(ctx, call{
		op:     "clusters.create",
		method: http.MethodPost,
		path:   c.api("local-cluster", "create"),
		body:   req,
		out:    &resp,
	})
	if err != nil {
		return model.ClusterResponse{}, err
	}
	if resp.Error != "" {
		return model.ClusterResponse{}, apperrors.Internal("create cluster: " + resp.Error)
	}
	if resp.ClusterName == "" {
		resp.ClusterName = req.ClusterName
	}
	return resp.ClusterResponse, nil
}

// DeleteCluster removes a cluster.
func (c *Client) DeleteCluster(ctx context.Context, name string) (model.MessageResponse, error) {
	return c.message(ctx, call{
		op:     "clusters.delete",
		method: http.MethodDelete,
		path:   c.api("local-cluster", name),
	})
}

// ScaleCluster changes the worker count of a cluster.
func (c *Client) ScaleCluster(ctx context.Context, name string, req model.ScaleRequest) (model.MessageResponse, error) {
	return c.message(ctx, call{
		op:     "clusters.scale",
		method: http.MethodPost,
		path:   c.api("local-cluster", name, "scale"),
		body:   req,
	})
}

// message performs cl against an endpoint answering {"message": ...} or {"error": ...}.
func (c *Client) message(ctx context.Context, cl call) (model.MessageResponse, error) {
	var resp struct {
		model.MessageResponse
		Error string `json:"error,omitempty"`
	}
	cl.out = &resp
	if err := c.do(ctx, cl); err != nil {
		return model.MessageResponse{}, err
	}
	if resp.Error != "" {
		return model.MessageResponse{}, apperrors.Internal(cl.op + ": " + resp.Error)
	}
	return resp.MessageResponse, nil
}
