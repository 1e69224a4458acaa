package out

import (
	"context"
	"time"

	"github.com/bnema/acms/internal/domain"
)

// ResourceStore holds the authoritative record of every managed entity.
// Getters return copies; callers mutate and Put them back while holding
// the entity lock.
type ResourceStore interface {
	// Lock acquires the per-entity lock and returns its release function.
	Lock(kind domain.Kind, id string) (unlock func())

	// Containers
	PutContainer(ctx context.Context, c *domain.Container) error
	GetContainer(ctx context.Context, id string) (*domain.Container, error)
	// FindContainer resolves an ID, a name or a unique ID prefix.
	FindContainer(ctx context.Context, ident string) (*domain.Container, error)
	DeleteContainer(ctx context.Context, id string) error
	ListContainers(ctx context.Context) ([]*domain.Container, error)

	// Images, keyed by normalized reference
	PutImage(ctx context.Context, img *domain.Image) error
	GetImage(ctx context.Context, ref string) (*domain.Image, error)
	DeleteImage(ctx context.Context, ref string) error
	ListImages(ctx context.Context) ([]*domain.Image, error)

	// Networks, keyed by name
	PutNetwork(ctx context.Context, n *domain.Network) error
	GetNetwork(ctx context.Context, name string) (*domain.Network, error)
	DeleteNetwork(ctx context.Context, name string) error
	ListNetworks(ctx context.Context) ([]*domain.Network, error)

	// Volumes, keyed by name
	PutVolume(ctx context.Context, v *domain.Volume) error
	GetVolume(ctx context.Context, name string) (*domain.Volume, error)
	DeleteVolume(ctx context.Context, name string) error
	ListVolumes(ctx context.Context) ([]*domain.Volume, error)

	// Builder singleton
	PutBuilder(ctx context.Context, b *domain.Builder) error
	GetBuilder(ctx context.Context) (*domain.Builder, error)

	// Counts returns the number of entities per kind.
	Counts(ctx context.Context) map[domain.Kind]int
}

// Record is one persisted entity.
type Record struct {
	Kind      domain.Kind
	ID        string
	Data      []byte
	UpdatedAt time.Time
}

// Persister writes store mutations through to durable storage.
type Persister interface {
	Save(ctx context.Context, kind domain.Kind, id string, data []byte) error
	Delete(ctx context.Context, kind domain.Kind, id string) error
	LoadAll(ctx context.Context) ([]Record, error)
	Close() error
}
