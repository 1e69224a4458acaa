// Package store implements the resource store adapter: in-memory tables per
// kind with optional write-through persistence.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/bnema/zerowrap"

	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/domain"
)

// Ensure Store implements out.ResourceStore.
var _ out.ResourceStore = (*Store)(nil)

// builderKey is the record ID of the builder singleton.
const builderKey = "builder"

// minPrefixLen is the shortest container ID prefix accepted for lookups.
const minPrefixLen = 3

// table is one kind's entity map. Its lock guards map structure only;
// entity-level serialization goes through Store.Lock.
type table[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{items: make(map[string]T)}
}

// Store keeps every managed entity in memory. When a Persister is set, each
// mutation is written through before it becomes visible.
type Store struct {
	containers *table[*domain.Container]
	images     *table[*domain.Image]
	networks   *table[*domain.Network]
	volumes    *table[*domain.Volume]

	builderMu sync.RWMutex
	builder   *domain.Builder

	locks     *keyedMutex
	persister out.Persister
}

// New creates an empty store. persister may be nil for memory-only mode.
func New(persister out.Persister) *Store {
	return &Store{
		containers: newTable[*domain.Container](),
		images:     newTable[*domain.Image](),
		networks:   newTable[*domain.Network](),
		volumes:    newTable[*domain.Volume](),
		locks:      newKeyedMutex(),
		persister:  persister,
	}
}

// Load fills the store from the persister. It is a no-op in memory-only mode.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "store",
		zerowrap.FieldAction:  "load",
	})
	log := zerowrap.FromCtx(ctx)

	records, err := s.persister.LoadAll(ctx)
	if err != nil {
		return log.WrapErr(err, "failed to load persisted resources")
	}

	for _, rec := range records {
		if err := s.restore(rec); err != nil {
			return log.WrapErrWithFields(err, "failed to decode persisted resource", map[string]any{
				"kind":                  string(rec.Kind),
				zerowrap.FieldEntityID: rec.ID,
			})
		}
	}

	log.Info().Int(zerowrap.FieldCount, len(records)).Msg("resources restored from persistent store")
	return nil
}

func (s *Store) restore(rec out.Record) error {
	switch rec.Kind {
	case domain.KindContainer:
		var c domain.Container
		if err := json.Unmarshal(rec.Data, &c); err != nil {
			return err
		}
		s.containers.items[rec.ID] = &c
	case domain.KindImage:
		var img domain.Image
		if err := json.Unmarshal(rec.Data, &img); err != nil {
			return err
		}
		s.images.items[rec.ID] = &img
	case domain.KindNetwork:
		var n domain.Network
		if err := json.Unmarshal(rec.Data, &n); err != nil {
			return err
		}
		s.networks.items[rec.ID] = &n
	case domain.KindVolume:
		var v domain.Volume
		if err := json.Unmarshal(rec.Data, &v); err != nil {
			return err
		}
		s.volumes.items[rec.ID] = &v
	case domain.KindBuilder:
		var b domain.Builder
		if err := json.Unmarshal(rec.Data, &b); err != nil {
			return err
		}
		s.builder = &b
	default:
		return fmt.Errorf("unknown resource kind %q", rec.Kind)
	}
	return nil
}

// Lock acquires the per-entity lock for kind/id.
func (s *Store) Lock(kind domain.Kind, id string) func() {
	return s.locks.Lock(string(kind) + "/" + id)
}

func (s *Store) save(ctx context.Context, kind domain.Kind, id string, v any) error {
	if s.persister == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", kind, id, err)
	}
	if err := s.persister.Save(ctx, kind, id, data); err != nil {
		return fmt.Errorf("failed to persist %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *Store) forget(ctx context.Context, kind domain.Kind, id string) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("failed to delete persisted %s %s: %w", kind, id, err)
	}
	return nil
}

// PutContainer inserts or replaces a container. Names are unique.
func (s *Store) PutContainer(ctx context.Context, c *domain.Container) error {
	s.containers.mu.Lock()
	defer s.containers.mu.Unlock()

	for id, existing := range s.containers.items {
		if id != c.ID && c.Name != "" && existing.Name == c.Name {
			return fmt.Errorf("%w: name %s is used by %s", domain.ErrContainerExists, c.Name, id)
		}
	}

	cp := c.Clone()
	if err := s.save(ctx, domain.KindContainer, c.ID, cp); err != nil {
		return err
	}
	s.containers.items[c.ID] = cp
	return nil
}

// GetContainer returns a container by exact ID.
func (s *Store) GetContainer(_ context.Context, id string) (*domain.Container, error) {
	s.containers.mu.RLock()
	defer s.containers.mu.RUnlock()

	c, ok := s.containers.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrContainerNotFound, id)
	}
	return c.Clone(), nil
}

// FindContainer resolves an exact ID, then an exact name, then a unique ID
// prefix of at least three characters.
func (s *Store) FindContainer(_ context.Context, ident string) (*domain.Container, error) {
	s.containers.mu.RLock()
	defer s.containers.mu.RUnlock()

	if c, ok := s.containers.items[ident]; ok {
		return c.Clone(), nil
	}
	for _, c := range s.containers.items {
		if c.Name == ident {
			return c.Clone(), nil
		}
	}

	if len(ident) >= minPrefixLen {
		var match *domain.Container
		for id, c := range s.containers.items {
			if !strings.HasPrefix(id, ident) {
				continue
			}
			if match != nil {
				return nil, fmt.Errorf("%w: %s", domain.ErrAmbiguousID, ident)
			}
			match = c
		}
		if match != nil {
			return match.Clone(), nil
		}
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrContainerNotFound, ident)
}

// DeleteContainer removes a container by exact ID.
func (s *Store) DeleteContainer(ctx context.Context, id string) error {
	s.containers.mu.Lock()
	defer s.containers.mu.Unlock()

	if _, ok := s.containers.items[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrContainerNotFound, id)
	}
	if err := s.forget(ctx, domain.KindContainer, id); err != nil {
		return err
	}
	delete(s.containers.items, id)
	return nil
}

// ListContainers returns every container ordered by creation time.
func (s *Store) ListContainers(_ context.Context) ([]*domain.Container, error) {
	s.containers.mu.RLock()
	list := make([]*domain.Container, 0, len(s.containers.items))
	for _, c := range s.containers.items {
		list = append(list, c.Clone())
	}
	s.containers.mu.RUnlock()

	slices.SortFunc(list, func(a, b *domain.Container) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return list, nil
}

// PutImage inserts or replaces an image keyed by its reference.
func (s *Store) PutImage(ctx context.Context, img *domain.Image) error {
	s.images.mu.Lock()
	defer s.images.mu.Unlock()

	cp := *img
	if err := s.save(ctx, domain.KindImage, img.Reference, &cp); err != nil {
		return err
	}
	s.images.items[img.Reference] = &cp
	return nil
}

// GetImage returns an image by normalized reference.
func (s *Store) GetImage(_ context.Context, ref string) (*domain.Image, error) {
	s.images.mu.RLock()
	defer s.images.mu.RUnlock()

	img, ok := s.images.items[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrImageNotFound, ref)
	}
	cp := *img
	return &cp, nil
}

// DeleteImage removes an image by normalized reference.
func (s *Store) DeleteImage(ctx context.Context, ref string) error {
	s.images.mu.Lock()
	defer s.images.mu.Unlock()

	if _, ok := s.images.items[ref]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrImageNotFound, ref)
	}
	if err := s.forget(ctx, domain.KindImage, ref); err != nil {
		return err
	}
	delete(s.images.items, ref)
	return nil
}

// ListImages returns every image ordered by reference.
func (s *Store) ListImages(_ context.Context) ([]*domain.Image, error) {
	s.images.mu.RLock()
	list := make([]*domain.Image, 0, len(s.images.items))
	for _, img := range s.images.items {
		cp := *img
		list = append(list, &cp)
	}
	s.images.mu.RUnlock()

	slices.SortFunc(list, func(a, b *domain.Image) int {
		return strings.Compare(a.Reference, b.Reference)
	})
	return list, nil
}

// PutNetwork inserts or replaces a network keyed by name.
func (s *Store) PutNetwork(ctx context.Context, n *domain.Network) error {
	s.networks.mu.Lock()
	defer s.networks.mu.Unlock()

	cp := cloneNetwork(n)
	if err := s.save(ctx, domain.KindNetwork, n.Name, cp); err != nil {
		return err
	}
	s.networks.items[n.Name] = cp
	return nil
}

// GetNetwork returns a network by name.
func (s *Store) GetNetwork(_ context.Context, name string) (*domain.Network, error) {
	s.networks.mu.RLock()
	defer s.networks.mu.RUnlock()

	n, ok := s.networks.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNetworkNotFound, name)
	}
	return cloneNetwork(n), nil
}

// DeleteNetwork removes a network by name.
func (s *Store) DeleteNetwork(ctx context.Context, name string) error {
	s.networks.mu.Lock()
	defer s.networks.mu.Unlock()

	if _, ok := s.networks.items[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNetworkNotFound, name)
	}
	if err := s.forget(ctx, domain.KindNetwork, name); err != nil {
		return err
	}
	delete(s.networks.items, name)
	return nil
}

// ListNetworks returns every network ordered by name.
func (s *Store) ListNetworks(_ context.Context) ([]*domain.Network, error) {
	s.networks.mu.RLock()
	list := make([]*domain.Network, 0, len(s.networks.items))
	for _, n := range s.networks.items {
		list = append(list, cloneNetwork(n))
	}
	s.networks.mu.RUnlock()

	slices.SortFunc(list, func(a, b *domain.Network) int {
		return strings.Compare(a.Name, b.Name)
	})
	return list, nil
}

// PutVolume inserts or replaces a volume keyed by name.
func (s *Store) PutVolume(ctx context.Context, v *domain.Volume) error {
	s.volumes.mu.Lock()
	defer s.volumes.mu.Unlock()

	cp := cloneVolume(v)
	if err := s.save(ctx, domain.KindVolume, v.Name, cp); err != nil {
		return err
	}
	s.volumes.items[v.Name] = cp
	return nil
}

// GetVolume returns a volume by name.
func (s *Store) GetVolume(_ context.Context, name string) (*domain.Volume, error) {
	s.volumes.mu.RLock()
	defer s.volumes.mu.RUnlock()

	v, ok := s.volumes.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrVolumeNotFound, name)
	}
	return cloneVolume(v), nil
}

// DeleteVolume removes a volume by name.
func (s *Store) DeleteVolume(ctx context.Context, name string) error {
	s.volumes.mu.Lock()
	defer s.volumes.mu.Unlock()

	if _, ok := s.volumes.items[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrVolumeNotFound, name)
	}
	if err := s.forget(ctx, domain.KindVolume, name); err != nil {
		return err
	}
	delete(s.volumes.items, name)
	return nil
}

// ListVolumes returns every volume ordered by name.
func (s *Store) ListVolumes(_ context.Context) ([]*domain.Volume, error) {
	s.volumes.mu.RLock()
	list := make([]*domain.Volume, 0, len(s.volumes.items))
	for _, v := range s.volumes.items {
		list = append(list, cloneVolume(v))
	}
	s.volumes.mu.RUnlock()

	slices.SortFunc(list, func(a, b *domain.Volume) int {
		return strings.Compare(a.Name, b.Name)
	})
	return list, nil
}

// PutBuilder replaces the builder singleton.
func (s *Store) PutBuilder(ctx context.Context, b *domain.Builder) error {
	s.builderMu.Lock()
	defer s.builderMu.Unlock()

	cp := *b
	if err := s.save(ctx, domain.KindBuilder, builderKey, &cp); err != nil {
		return err
	}
	s.builder = &cp
	return nil
}

// GetBuilder returns the builder singleton.
func (s *Store) GetBuilder(_ context.Context) (*domain.Builder, error) {
	s.builderMu.RLock()
	defer s.builderMu.RUnlock()

	if s.builder == nil {
		return nil, domain.ErrBuilderNotCreated
	}
	cp := *s.builder
	return &cp, nil
}

// Counts returns the number of stored entities per kind.
func (s *Store) Counts(_ context.Context) map[domain.Kind]int {
	counts := make(map[domain.Kind]int, 5)

	s.containers.mu.RLock()
	counts[domain.KindContainer] = len(s.containers.items)
	s.containers.mu.RUnlock()

	s.images.mu.RLock()
	counts[domain.KindImage] = len(s.images.items)
	s.images.mu.RUnlock()

	s.networks.mu.RLock()
	counts[domain.KindNetwork] = len(s.networks.items)
	s.networks.mu.RUnlock()

	s.volumes.mu.RLock()
	counts[domain.KindVolume] = len(s.volumes.items)
	s.volumes.mu.RUnlock()

	s.builderMu.RLock()
	if s.builder != nil {
		counts[domain.KindBuilder] = 1
	} else {
		counts[domain.KindBuilder] = 0
	}
	s.builderMu.RUnlock()

	return counts
}

func cloneLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return nil
	}
	cp := make(map[string]string, len(labels))
	for k, v := range labels {
		cp[k] = v
	}
	return cp
}

func cloneNetwork(n *domain.Network) *domain.Network {
	cp := *n
	cp.Labels = cloneLabels(n.Labels)
	return &cp
}

func cloneVolume(v *domain.Volume) *domain.Volume {
	cp := *v
	cp.Labels = cloneLabels(v.Labels)
	return &cp
}
