package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/mattn/go-shellwords"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/pkg/bytesize"
	"github.com/bnema/acms/pkg/validation"
)

const tracerName = "github.com/bnema/acms/internal/adapters/in/http/api"

// arguments are the validated JSON arguments of one tool call.
type arguments struct {
	raw    []byte
	fields map[string]json.RawMessage
}

func newArguments(raw []byte) (arguments, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return arguments{}, domain.NewValidationError("", nil, "arguments must be a JSON object")
	}
	return arguments{raw: raw, fields: fields}, nil
}

// bind decodes the arguments into dst.
func (a arguments) bind(dst any) error {
	if err := json.Unmarshal(a.raw, dst); err != nil {
		return domain.NewValidationError("", nil, err.Error())
	}
	return nil
}

// targets decodes the target set stored under key.
func (a arguments) targets(key string) (domain.TargetSet, error) {
	return validation.DecodeTargetSet(a.fields, key)
}

// seconds reads an optional integer number of seconds.
func (a arguments) seconds(key string) (time.Duration, error) {
	raw, ok := a.fields[key]
	if !ok {
		return 0, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, domain.NewValidationError(key, string(raw), "must be a whole number of seconds")
	}
	if n < 0 {
		return 0, domain.NewValidationError(key, n, "must not be negative")
	}
	return time.Duration(n) * time.Second, nil
}

// command reads argv given either as an array or as one shell-style line
// such as "nginx -v".
func (a arguments) command(key string) ([]string, error) {
	raw := a.fields[key]
	var argv []string
	if err := json.Unmarshal(raw, &argv); err == nil {
		return argv, nil
	}
	var line string
	if err := json.Unmarshal(raw, &line); err != nil {
		return nil, domain.NewValidationError(key, string(raw), "must be a string or an array of strings")
	}
	argv, err := shellwords.Parse(line)
	if err != nil {
		return nil, domain.NewValidationError(key, line, err.Error())
	}
	if len(argv) == 0 {
		return nil, domain.NewValidationError(key, line, "must not be empty")
	}
	return argv, nil
}

// size reads an optional byte count given as a number or a human size
// string such as "512MB".
func (a arguments) size(key string) (int64, error) {
	raw, ok := a.fields[key]
	if !ok {
		return 0, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, domain.NewValidationError(key, string(raw), "must be a byte count or a size such as 10GB")
	}
	n, err := bytesize.Parse(s)
	if err != nil {
		return 0, domain.NewValidationError(key, s, err.Error())
	}
	return n, nil
}

// flag reads an optional boolean.
func (a arguments) flag(key string) (bool, error) {
	raw, ok := a.fields[key]
	if !ok {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, domain.NewValidationError(key, string(raw), "must be a boolean")
	}
	return b, nil
}

type toolFunc func(ctx context.Context, args arguments) (any, error)

// tool is one entry of the RPC surface.
type tool struct {
	name        string
	description string
	schema      map[string]any
	handle      toolFunc
}

// registry holds the tools in registration order with their compiled schemas.
type registry struct {
	tools     []tool
	byName    map[string]tool
	validator *validation.Validator
}

func newRegistry(tools []tool) (*registry, error) {
	r := &registry{
		tools:  tools,
		byName: make(map[string]tool, len(tools)),
	}
	schemas := make(map[string]map[string]any, len(tools))
	for _, t := range tools {
		if _, dup := r.byName[t.name]; dup {
			return nil, fmt.Errorf("duplicate tool %s", t.name)
		}
		r.byName[t.name] = t
		schemas[t.name] = t.schema
	}

	v, err := validation.NewValidator(schemas)
	if err != nil {
		return nil, err
	}
	r.validator = v
	return r, nil
}

// call validates the arguments, runs the tool inside a span and records
// metrics. Batch results come back as dto.BatchResponse.
func (s *Server) call(ctx context.Context, name string, raw []byte) (any, error) {
	start := time.Now()
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "http",
		zerowrap.FieldHandler: "tool",
		zerowrap.FieldAction:  name,
	})
	log := zerowrap.FromCtx(ctx)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "tool "+name)
	span.SetAttributes(attribute.String("acms.tool", name))
	defer span.End()

	result, err := s.invoke(ctx, name, raw)

	outcome := "ok"
	if err != nil {
		outcome = string(kindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug().Err(err).Str("kind", outcome).Msg("tool call failed")
	}
	if s.metrics != nil {
		s.metrics.RecordToolCall(name, outcome, time.Since(start))
	}
	if err != nil {
		return nil, err
	}

	if br, ok := result.(domain.BatchResult); ok {
		if s.metrics != nil {
			s.metrics.RecordBatch(name, br)
		}
		span.SetAttributes(
			attribute.Int("acms.batch.succeeded", br.Succeeded()),
			attribute.Int("acms.batch.failed", br.Failed()),
		)
		return toBatchResponse(br), nil
	}
	return result, nil
}

func (s *Server) invoke(ctx context.Context, name string, raw []byte) (any, error) {
	t, ok := s.tools.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
	}
	if err := s.tools.validator.Validate(name, raw); err != nil {
		return nil, err
	}
	args, err := newArguments(raw)
	if err != nil {
		return nil, err
	}
	return t.handle(ctx, args)
}
