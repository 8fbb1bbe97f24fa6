package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"marketDash/internal/modules/dashboard/application/port"
	"marketDash/internal/modules/dashboard/domain"
	"marketDash/internal/shared/normalization"
)

var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrNoResources     = errors.New("no resources configured")
	ErrMissingFetcher  = errors.New("missing record fetcher")
)

// Dashboard groups one Store per configured resource. It is created once per session (or once
// per process for the CLI) and handed to whatever renders it.
type Dashboard struct {
	stores map[string]*Store
	names  []string
}

// NewDashboard validates every resource and builds its store.
func NewDashboard(resources map[string]domain.Resource, fetcher port.RecordFetcher, opts ...Option) (*Dashboard, error) {
	if fetcher == nil {
		return nil, ErrMissingFetcher
	}
	if len(resources) == 0 {
		return nil, ErrNoResources
	}

	stores := make(map[string]*Store, len(resources))
	names := make([]string, 0, len(resources))
	for name, resource := range resources {
		if resource.Name == "" {
			resource.Name = name
		}
		if err := resource.Validate(); err != nil {
			return nil, fmt.Errorf("resource %s: %w", name, err)
		}
		stores[resource.Name] = NewStore(resource, fetcher, opts...)
		names = append(names, resource.Name)
	}
	slices.SortFunc(names, compareResourceNames)

	return &Dashboard{stores: stores, names: names}, nil
}

// compareResourceNames keeps the built-in resources in their usual tab order and sorts any
// extra ones alphabetically after them.
func compareResourceNames(a, b string) int {
	known := normalization.KnownResources()
	ai, bi := slices.Index(known, a), slices.Index(known, b)
	switch {
	case ai >= 0 && bi >= 0:
		return ai - bi
	case ai >= 0:
		return -1
	case bi >= 0:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Resources lists the store names in display order.
func (d *Dashboard) Resources() []string {
	return slices.Clone(d.names)
}

// Store resolves name (aliases such as "order" included) to its store.
func (d *Dashboard) Store(name string) (*Store, error) {
	if store, ok := d.stores[name]; ok {
		return store, nil
	}
	if store, ok := d.stores[normalization.NormalizeResource(name)]; ok {
		return store, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
}

// FetchAll refreshes every store concurrently. Per-store failures land in each state's
// LastError; the returned error is only the caller's context error.
func (d *Dashboard) FetchAll(ctx context.Context) (map[string]domain.State, error) {
	states := make([]domain.State, len(d.names))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, name := range d.names {
		i, store := i, d.stores[name]
		group.Go(func() error {
			states[i] = store.Fetch(groupCtx)
			return groupCtx.Err()
		})
	}
	err := group.Wait()

	result := make(map[string]domain.State, len(d.names))
	for i, name := range d.names {
		result[name] = states[i]
	}
	return result, err
}

// Close cancels every in-flight fetch.
func (d *Dashboard) Close() {
	for _, store := range d.stores {
		store.Cancel()
	}
}
