package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/relevohq/relevo/internal/config"
	"github.com/relevohq/relevo/internal/core"
	"github.com/relevohq/relevo/pkg/cache"
	"github.com/relevohq/relevo/pkg/log"
	"github.com/relevohq/relevo/pkg/retry"
)

// Client wraps the organization directory API. Every call carries the
// configured timeout and is retried with exponential backoff, but only on
// timeout/connection failures: a 4xx answer is a fact, not an outage.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	retrier *retry.Retrier

	employees *cache.Store[core.Employee]
	roles     *cache.Store[core.Role]
	processes *cache.Store[[]core.ProcessContextData]
}

func NewClient(cfg *config.BackendConfig, ttl time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout()},
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		retrier: retry.NewRetrier(&retry.Config{
			MaxRetries:    cfg.MaxRetries,
			BackoffFactor: 2.0,
			InitialDelay:  1 * time.Second,
			MaxDelay:      4 * time.Second,
			Jitter:        100 * time.Millisecond,
			Retryable:     isConnectionError,
		}),
		employees: cache.New[core.Employee](ttl, nil),
		roles:     cache.New[core.Role](ttl, nil),
		processes: cache.New[[]core.ProcessContextData](ttl, nil),
	}
}

// isConnectionError reports whether the failure is a timeout or connection
// problem. Anything the server actually answered is not retried.
func isConnectionError(err error) bool {
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrInvalid) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, core.ErrUnavailable)
}

func (c *Client) GetEmployee(ctx context.Context, id string) (core.Employee, error) {
	key := "employee:" + id
	if emp, ok := c.employees.Get(key); ok {
		return emp, nil
	}

	var emp core.Employee
	err := c.retrier.Do(ctx, func() error {
		return c.get(ctx, "/api/employees/"+id, &emp)
	})
	if err != nil {
		return core.Employee{}, err
	}

	c.employees.Set(key, emp)
	return emp, nil
}

func (c *Client) GetRole(ctx context.Context, id string) (core.Role, error) {
	key := "role:" + id
	if role, ok := c.roles.Get(key); ok {
		return role, nil
	}

	var role core.Role
	err := c.retrier.Do(ctx, func() error {
		return c.get(ctx, "/api/roles/"+id, &role)
	})
	if err != nil {
		return core.Role{}, err
	}

	c.roles.Set(key, role)
	return role, nil
}

// GetOrganizationProcesses returns the organization's active processes,
// most recently updated first, capped at limit to bound prompt size.
func (c *Client) GetOrganizationProcesses(ctx context.Context, orgID string, limit int) ([]core.ProcessContextData, error) {
	key := "processes:" + orgID
	procs, ok := c.processes.Get(key)
	if !ok {
		err := c.retrier.Do(ctx, func() error {
			return c.get(ctx, "/api/organizations/"+orgID+"/processes", &procs)
		})
		if err != nil {
			return nil, err
		}
		c.processes.Set(key, procs)
	}

	active := make([]core.ProcessContextData, 0, len(procs))
	for _, p := range procs {
		if p.IsActive {
			active = append(active, p)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].UpdatedAt.After(active[j].UpdatedAt)
	})
	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func (c *Client) CreateProcess(ctx context.Context, p core.NewProcess) (core.ProcessContextData, error) {
	var created core.ProcessContextData
	err := c.retrier.Do(ctx, func() error {
		return c.post(ctx, "/api/processes", p, &created)
	})
	if err != nil {
		return core.ProcessContextData{}, err
	}

	// The org's process list changed; next read must refetch.
	c.processes.Invalidate("processes:" + p.OrganizationID)

	log.FromCtx(ctx).Info().
		Str("process_id", created.ID).
		Str("name", created.Name).
		Msg("created process in directory")
	return created, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", core.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", core.ErrNotFound, method, path)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: http %d: %s", core.ErrInvalid, resp.StatusCode, string(data))
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: http %d", core.ErrUnavailable, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", core.ErrInvalid, path, err)
	}
	return nil
}
