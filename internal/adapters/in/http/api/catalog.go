package api

import (
	"context"

	"github.com/samber/lo"

	"github.com/bnema/acms/internal/adapters/dto"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/pkg/validation"
)

func str() map[string]any {
	return map[string]any{"type": "string", "minLength": 1}
}

func boolean() map[string]any {
	return map[string]any{"type": "boolean"}
}

func integer(minimum int) map[string]any {
	return map[string]any{"type": "integer", "minimum": minimum}
}

func stringArray(minItems int) map[string]any {
	return map[string]any{
		"type":     "array",
		"minItems": minItems,
		"items":    map[string]any{"type": "string"},
	}
}

func labels() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": map[string]any{"type": "string"},
	}
}

func empty() map[string]any {
	return validation.ObjectSchema(map[string]any{})
}

func containerConfigSchema(extra map[string]any) map[string]any {
	properties := map[string]any{
		"image":   str(),
		"name":    str(),
		"command": stringArray(0),
		"env":     stringArray(0),
		"ports": map[string]any{
			"type": "array",
			"items": validation.ObjectSchema(map[string]any{
				"container_port": integer(1),
				"host_port":      integer(0),
				"protocol":       map[string]any{"type": "string", "enum": []any{"tcp", "udp"}},
			}, "container_port"),
		},
		"mounts": map[string]any{
			"type": "array",
			"items": validation.ObjectSchema(map[string]any{
				"volume": str(),
				"path":   str(),
			}, "volume", "path"),
		},
		"network": str(),
		"labels":  labels(),
	}
	for k, v := range extra {
		properties[k] = v
	}
	return validation.ObjectSchema(properties, "image")
}

// catalog returns every tool of the API in listing order.
func (s *Server) catalog() []tool {
	return []tool{
		// Images
		{
			name:        "image_pull",
			description: "Pull an image by reference",
			schema:      validation.ObjectSchema(map[string]any{"ref": str()}, "ref"),
			handle:      s.imagePull,
		},
		{
			name:        "image_list",
			description: "List pulled images",
			schema:      empty(),
			handle:      s.imageList,
		},
		{
			name:        "image_inspect",
			description: "Inspect a pulled image",
			schema:      validation.ObjectSchema(map[string]any{"ref": str()}, "ref"),
			handle:      s.imageInspect,
		},
		{
			name:        "image_tag",
			description: "Tag an image under a new reference",
			schema:      validation.ObjectSchema(map[string]any{"ref": str(), "new_ref": str()}, "ref", "new_ref"),
			handle:      s.imageTag,
		},
		{
			name:        "image_delete",
			description: "Delete one, many or all images",
			schema:      validation.BatchSchema("refs", map[string]any{"force": boolean()}),
			handle:      s.imageDelete,
		},
		{
			name:        "image_prune",
			description: "Delete every image no container references",
			schema:      empty(),
			handle:      s.imagePrune,
		},

		// Containers
		{
			name:        "container_create",
			description: "Create a container from an image",
			schema:      containerConfigSchema(nil),
			handle:      s.containerCreate,
		},
		{
			name:        "container_run",
			description: "Create and start a detached container",
			schema:      containerConfigSchema(map[string]any{"detached": boolean()}),
			handle:      s.containerRun,
		},
		{
			name:        "container_start",
			description: "Start a created or stopped container",
			schema:      validation.ObjectSchema(map[string]any{"id": str()}, "id"),
			handle:      s.containerStart,
		},
		{
			name:        "container_stop",
			description: "Gracefully stop one, many or all running containers",
			schema:      validation.BatchSchema("ids", map[string]any{"timeout": integer(0)}),
			handle:      s.containerStop,
		},
		{
			name:        "container_kill",
			description: "Kill one, many or all running containers",
			schema:      validation.BatchSchema("ids", nil),
			handle:      s.containerKill,
		},
		{
			name:        "container_delete",
			description: "Delete one, many or all stopped containers",
			schema:      validation.BatchSchema("ids", nil),
			handle:      s.containerDelete,
		},
		{
			name:        "container_list",
			description: "List running containers, or all of them",
			schema:      validation.ObjectSchema(map[string]any{"all": boolean()}),
			handle:      s.containerList,
		},
		{
			name:        "container_logs",
			description: "Read container output",
			schema:      validation.ObjectSchema(map[string]any{"id": str(), "tail": integer(0)}, "id"),
			handle:      s.containerLogs,
		},
		{
			name:        "container_inspect",
			description: "Inspect a container",
			schema:      validation.ObjectSchema(map[string]any{"id": str()}, "id"),
			handle:      s.containerInspect,
		},
		{
			name:        "container_exec",
			description: "Run a command in a running container",
			schema: validation.ObjectSchema(map[string]any{
				"id":      str(),
				"command": map[string]any{"anyOf": []any{str(), stringArray(1)}}, // argv or "nginx -v"
				"timeout": integer(1),
			}, "id", "command"),
			handle: s.containerExec,
		},

		// Networks
		{
			name:        "network_list",
			description: "List networks",
			schema:      empty(),
			handle:      s.networkList,
		},
		{
			name:        "network_create",
			description: "Create a network",
			schema: validation.ObjectSchema(map[string]any{
				"name":   str(),
				"driver": str(),
				"subnet": str(),
				"labels": labels(),
			}, "name"),
			handle: s.networkCreate,
		},
		{
			name:        "network_inspect",
			description: "Inspect a network",
			schema:      validation.ObjectSchema(map[string]any{"name": str()}, "name"),
			handle:      s.networkInspect,
		},
		{
			name:        "network_delete",
			description: "Delete one, many or all unprotected networks",
			schema:      validation.BatchSchema("names", nil),
			handle:      s.networkDelete,
		},

		// Volumes
		{
			name:        "volume_list",
			description: "List volumes",
			schema:      empty(),
			handle:      s.volumeList,
		},
		{
			name:        "volume_create",
			description: "Create a volume",
			schema: validation.ObjectSchema(map[string]any{
				"name":   str(),
				"size":   map[string]any{"anyOf": []any{integer(0), str()}}, // bytes or "10GB"
				"labels": labels(),
			}, "name"),
			handle: s.volumeCreate,
		},
		{
			name:        "volume_inspect",
			description: "Inspect a volume",
			schema:      validation.ObjectSchema(map[string]any{"name": str()}, "name"),
			handle:      s.volumeInspect,
		},
		{
			name:        "volume_delete",
			description: "Delete one, many or all unprotected volumes",
			schema:      validation.BatchSchema("names", nil),
			handle:      s.volumeDelete,
		},

		// Builder
		{
			name:        "builder_status",
			description: "Report the builder state",
			schema:      empty(),
			handle:      s.builderStatus,
		},
		{
			name:        "builder_start",
			description: "Start the builder in the background",
			schema:      empty(),
			handle:      s.builderStart,
		},
		{
			name:        "builder_stop",
			description: "Stop the builder",
			schema:      empty(),
			handle:      s.builderStop,
		},
		{
			name:        "builder_delete",
			description: "Delete the builder container",
			schema:      validation.ObjectSchema(map[string]any{"force": boolean()}),
			handle:      s.builderDelete,
		},

		// Registry and system
		{
			name:        "registry_default",
			description: "Report the default registry",
			schema:      empty(),
			handle:      s.registryDefault,
		},
		{
			name:        "system_status",
			description: "Report server status",
			schema:      empty(),
			handle:      s.systemStatus,
		},
		{
			name:        "system_logs",
			description: "Read server logs written within a window such as 30s, 5m or 1d",
			schema:      validation.ObjectSchema(map[string]any{"last": str()}, "last"),
			handle:      s.systemLogs,
		},
		{
			name:        "system_dns_list",
			description: "List configured DNS domains",
			schema:      empty(),
			handle:      s.systemDNSList,
		},
		{
			name:        "system_dns_default",
			description: "Report the default DNS domain",
			schema:      empty(),
			handle:      s.systemDNSDefault,
		},
	}
}

type refArgs struct {
	Ref    string `json:"ref"`
	NewRef string `json:"new_ref"`
}

func (s *Server) imagePull(ctx context.Context, args arguments) (any, error) {
	var a refArgs
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	img, err := s.services.Images.Pull(ctx, a.Ref)
	if err != nil {
		return nil, err
	}
	return toImage(img), nil
}

func (s *Server) imageList(ctx context.Context, _ arguments) (any, error) {
	images, err := s.services.Images.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ImagesResponse{Images: lo.Map(images, func(img *domain.Image, _ int) dto.Image {
		return toImage(img)
	})}, nil
}

func (s *Server) imageInspect(ctx context.Context, args arguments) (any, error) {
	var a refArgs
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	img, err := s.services.Images.Inspect(ctx, a.Ref)
	if err != nil {
		return nil, err
	}
	return toImage(img), nil
}

func (s *Server) imageTag(ctx context.Context, args arguments) (any, error) {
	var a refArgs
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	img, err := s.services.Images.Tag(ctx, a.Ref, a.NewRef)
	if err != nil {
		return nil, err
	}
	return toImage(img), nil
}

func (s *Server) imageDelete(ctx context.Context, args arguments) (any, error) {
	targets, err := args.targets("refs")
	if err != nil {
		return nil, err
	}
	force, err := args.flag("force")
	if err != nil {
		return nil, err
	}
	return s.services.Images.Delete(ctx, targets, force)
}

func (s *Server) imagePrune(ctx context.Context, _ arguments) (any, error) {
	report, err := s.services.Images.Prune(ctx)
	if err != nil {
		return nil, err
	}
	return dto.PruneResponse{
		Reclaimed:      append([]string{}, report.Reclaimed...),
		SpaceReclaimed: report.SpaceReclaimed,
	}, nil
}

func (s *Server) containerCreate(ctx context.Context, args arguments) (any, error) {
	var req dto.CreateContainerRequest
	if err := args.bind(&req); err != nil {
		return nil, err
	}
	c, err := s.services.Containers.Create(ctx, toContainerConfig(req))
	if err != nil {
		return nil, err
	}
	return toContainer(c), nil
}

// containerRun always runs detached and answers once the container is
// running or has been rolled back.
func (s *Server) containerRun(ctx context.Context, args arguments) (any, error) {
	var req struct {
		dto.CreateContainerRequest
		Detached *bool `json:"detached,omitempty"`
	}
	if err := args.bind(&req); err != nil {
		return nil, err
	}
	if req.Detached != nil && !*req.Detached {
		return nil, domain.NewValidationError("detached", false, "only detached runs are supported")
	}
	c, err := s.services.Containers.Run(ctx, toContainerConfig(req.CreateContainerRequest))
	if err != nil {
		return nil, err
	}
	return toContainer(c), nil
}

type idArgs struct {
	ID   string `json:"id"`
	Tail int    `json:"tail"`
}

func (s *Server) containerStart(ctx context.Context, args arguments) (any, error) {
	var a idArgs
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	c, err := s.services.Containers.Start(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return toContainer(c), nil
}

func (s *Server) containerStop(ctx context.Context, args arguments) (any, error) {
	targets, err := args.targets("ids")
	if err != nil {
		return nil, err
	}
	grace, err := args.seconds("timeout")
	if err != nil {
		return nil, err
	}
	return s.services.Containers.Stop(ctx, targets, grace)
}

func (s *Server) containerKill(ctx context.Context, args arguments) (any, error) {
	targets, err := args.targets("ids")
	if err != nil {
		return nil, err
	}
	return s.services.Containers.Kill(ctx, targets)
}

func (s *Server) containerDelete(ctx context.Context, args arguments) (any, error) {
	targets, err := args.targets("ids")
	if err != nil {
		return nil, err
	}
	return s.services.Containers.Delete(ctx, targets)
}

func (s *Server) containerList(ctx context.Context, args arguments) (any, error) {
	all, err := args.flag("all")
	if err != nil {
		return nil, err
	}
	containers, err := s.services.Containers.List(ctx, all)
	if err != nil {
		return nil, err
	}
	return dto.ContainersResponse{Containers: lo.Map(containers, func(c *domain.Container, _ int) dto.Container {
		return toContainer(c)
	})}, nil
}

func (s *Server) containerLogs(ctx context.Context, args arguments) (any, error) {
	var a idArgs
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	lines, err := s.services.Containers.Logs(ctx, a.ID, a.Tail)
	if err != nil {
		return nil, err
	}
	return dto.ContainerLogsResponse{ID: a.ID, Lines: append([]string{}, lines...)}, nil
}

func (s *Server) containerInspect(ctx context.Context, args arguments) (any, error) {
	var a idArgs
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	c, err := s.services.Containers.Inspect(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return toContainer(c), nil
}

func (s *Server) containerExec(ctx context.Context, args arguments) (any, error) {
	var a idArgs
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	argv, err := args.command("command")
	if err != nil {
		return nil, err
	}
	timeout, err := args.seconds("timeout")
	if err != nil {
		return nil, err
	}
	res, err := s.services.Containers.Exec(ctx, a.ID, argv, timeout)
	if err != nil {
		return nil, err
	}
	return dto.ExecResponse{
		ExitCode: res.ExitCode,
		Stdout:   string(res.Stdout),
		Stderr:   string(res.Stderr),
	}, nil
}

type nameArgs struct {
	Name   string            `json:"name"`
	Driver string            `json:"driver"`
	Subnet string            `json:"subnet"`
	Labels map[string]string `json:"labels"`
}

func (s *Server) networkList(ctx context.Context, _ arguments) (any, error) {
	networks, err := s.services.Networks.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NetworksResponse{Networks: lo.Map(networks, func(n *domain.Network, _ int) dto.Network {
		return toNetwork(n)
	})}, nil
}

func (s *Server) networkCreate(ctx context.Context, args arguments) (any, error) {
	var a nameArgs
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	n, err := s.services.Networks.Create(ctx, domain.NetworkConfig{
		Name:   a.Name,
		Driver: a.Driver,
		Subnet: a.Subnet,
		Labels: a.Labels,
	})
	if err != nil {
		return nil, err
	}
	return toNetwork(n), nil
}

func (s *Server) networkInspect(ctx context.Context, args arguments) (any, error) {
	var a nameArgs
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	n, err := s.services.Networks.Inspect(ctx, a.Name)
	if err != nil {
		return nil, err
	}
	return toNetwork(n), nil
}

func (s *Server) networkDelete(ctx context.Context, args arguments) (any, error) {
	targets, err := args.targets("names")
	if err != nil {
		return nil, err
	}
	return s.services.Networks.Delete(ctx, targets)
}

func (s *Server) volumeList(ctx context.Context, _ arguments) (any, error) {
	volumes, err := s.services.Volumes.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.VolumesResponse{Volumes: lo.Map(volumes, func(v *domain.Volume, _ int) dto.Volume {
		return toVolume(v)
	})}, nil
}

func (s *Server) volumeCreate(ctx context.Context, args arguments) (any, error) {
	var a nameArgs
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	size, err := args.size("size")
	if err != nil {
		return nil, err
	}
	v, err := s.services.Volumes.Create(ctx, domain.VolumeConfig{
		Name:   a.Name,
		Size:   size,
		Labels: a.Labels,
	})
	if err != nil {
		return nil, err
	}
	return toVolume(v), nil
}

func (s *Server) volumeInspect(ctx context.Context, args arguments) (any, error) {
	var a nameArgs
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	v, err := s.services.Volumes.Inspect(ctx, a.Name)
	if err != nil {
		return nil, err
	}
	return toVolume(v), nil
}

func (s *Server) volumeDelete(ctx context.Context, args arguments) (any, error) {
	targets, err := args.targets("names")
	if err != nil {
		return nil, err
	}
	return s.services.Volumes.Delete(ctx, targets)
}

func (s *Server) builderStatus(ctx context.Context, _ arguments) (any, error) {
	return toBuilder(s.services.Builder.Status(ctx)), nil
}

func (s *Server) builderStart(ctx context.Context, _ arguments) (any, error) {
	b, err := s.services.Builder.Start(ctx)
	if err != nil {
		return nil, err
	}
	return toBuilder(b), nil
}

func (s *Server) builderStop(ctx context.Context, _ arguments) (any, error) {
	b, err := s.services.Builder.Stop(ctx)
	if err != nil {
		return nil, err
	}
	return toBuilder(b), nil
}

func (s *Server) builderDelete(ctx context.Context, args arguments) (any, error) {
	force, err := args.flag("force")
	if err != nil {
		return nil, err
	}
	if err := s.services.Builder.Delete(ctx, force); err != nil {
		return nil, err
	}
	return dto.MessageResponse{Message: "builder deleted"}, nil
}

func (s *Server) registryDefault(ctx context.Context, _ arguments) (any, error) {
	return dto.RegistryResponse{Registry: s.services.System.DefaultRegistry(ctx)}, nil
}

func (s *Server) systemStatus(ctx context.Context, _ arguments) (any, error) {
	status, err := s.services.System.Status(ctx)
	if err != nil {
		return nil, err
	}
	return toStatus(status), nil
}

func (s *Server) systemLogs(ctx context.Context, args arguments) (any, error) {
	var a struct {
		Last string `json:"last"`
	}
	if err := args.bind(&a); err != nil {
		return nil, err
	}
	entries, err := s.services.System.Logs(ctx, a.Last)
	if err != nil {
		return nil, err
	}
	return dto.SystemLogsResponse{Entries: lo.Map(entries, func(e domain.LogEntry, _ int) dto.LogEntry {
		return dto.LogEntry{Time: e.Time, Level: e.Level, Message: e.Message}
	})}, nil
}

func (s *Server) systemDNSList(ctx context.Context, _ arguments) (any, error) {
	return dto.DNSResponse{Domains: lo.Map(s.services.System.DNSList(ctx), func(d domain.DNSDomain, _ int) dto.DNSDomain {
		return toDNSDomain(d)
	})}, nil
}

func (s *Server) systemDNSDefault(ctx context.Context, _ arguments) (any, error) {
	d, err := s.services.System.DNSDefault(ctx)
	if err != nil {
		return nil, err
	}
	return toDNSDomain(*d), nil
}
