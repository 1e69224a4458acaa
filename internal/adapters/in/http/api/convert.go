package api

import (
	"time"

	"github.com/samber/lo"

	"github.com/bnema/acms/internal/adapters/dto"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/pkg/bytesize"
)

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toBatchResponse(r domain.BatchResult) dto.BatchResponse {
	return dto.BatchResponse{
		Results: lo.Map(r.Entries, func(e domain.BatchEntry, _ int) dto.BatchEntry {
			return dto.BatchEntry{Target: e.Target, Outcome: string(e.Outcome), Detail: e.Detail}
		}),
		Succeeded: r.Succeeded(),
		Failed:    r.Failed(),
	}
}

func toContainer(c *domain.Container) dto.Container {
	return dto.Container{
		ID:      c.ID,
		Name:    c.Name,
		Image:   c.Image,
		State:   string(c.State),
		Command: c.Command,
		Env:     c.Env,
		Ports: lo.Map(c.Ports, func(p domain.PortMapping, _ int) dto.Port {
			return dto.Port{ContainerPort: p.ContainerPort, HostPort: p.HostPort, Protocol: p.Protocol}
		}),
		Mounts: lo.Map(c.Mounts, func(m domain.Mount, _ int) dto.Mount {
			return dto.Mount{Volume: m.Volume, Path: m.Path}
		}),
		Network:    c.Network,
		Labels:     c.Labels,
		ExitCode:   c.ExitCode,
		CreatedAt:  c.CreatedAt,
		StartedAt:  timePtr(c.StartedAt),
		FinishedAt: timePtr(c.FinishedAt),
	}
}

func toContainerConfig(req dto.CreateContainerRequest) domain.ContainerConfig {
	return domain.ContainerConfig{
		Image:   req.Image,
		Name:    req.Name,
		Command: req.Command,
		Env:     req.Env,
		Ports: lo.Map(req.Ports, func(p dto.Port, _ int) domain.PortMapping {
			return domain.PortMapping{ContainerPort: p.ContainerPort, HostPort: p.HostPort, Protocol: p.Protocol}
		}),
		Mounts: lo.Map(req.Mounts, func(m dto.Mount, _ int) domain.Mount {
			return domain.Mount{Volume: m.Volume, Path: m.Path}
		}),
		Network: req.Network,
		Labels:  req.Labels,
	}
}

func toImage(img *domain.Image) dto.Image {
	return dto.Image{
		Reference: img.Reference,
		Digest:    img.Digest,
		Size:      img.Size,
		SizeHuman: bytesize.Format(img.Size),
		CreatedAt: img.CreatedAt,
		PulledAt:  img.PulledAt,
	}
}

func toNetwork(n *domain.Network) dto.Network {
	return dto.Network{
		ID:        n.ID,
		Name:      n.Name,
		Driver:    n.Driver,
		Subnet:    n.Subnet,
		Labels:    n.Labels,
		Protected: n.Protected,
		CreatedAt: n.CreatedAt,
	}
}

func toVolume(v *domain.Volume) dto.Volume {
	out := dto.Volume{
		Name:      v.Name,
		Size:      v.Size,
		Path:      v.Path,
		Labels:    v.Labels,
		Protected: v.Protected,
		CreatedAt: v.CreatedAt,
	}
	// Size 0 means unbounded.
	if v.Size > 0 {
		out.SizeHuman = bytesize.Format(v.Size)
	}
	return out
}

func toBuilder(b *domain.Builder) dto.Builder {
	return dto.Builder{
		Name:        b.Name,
		Image:       b.Image,
		State:       string(b.State),
		ContainerID: b.ContainerID,
		LastError:   b.LastError,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toStatus(s *domain.SystemStatus) dto.StatusResponse {
	counts := make(map[string]int, len(s.Counts))
	for kind, n := range s.Counts {
		counts[string(kind)] = n
	}
	return dto.StatusResponse{
		Version:        s.Version,
		Commit:         s.Commit,
		StartedAt:      s.StartedAt,
		Uptime:         s.Uptime.Round(time.Second).String(),
		Runtime:        s.Runtime,
		RuntimeVersion: s.RuntimeVersion,
		Persistence:    s.Persistence,
		Counts:         counts,
		Builder:        string(s.Builder),
	}
}

func toDNSDomain(d domain.DNSDomain) dto.DNSDomain {
	return dto.DNSDomain{Name: d.Name, Default: d.Default}
}
