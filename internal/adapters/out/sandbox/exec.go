package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/pkg/validation"
)

// NginxVersion is what `nginx -v` reports inside sandboxed nginx images.
const NginxVersion = "nginx/1.27.3"

const exitCodeNotFound = 127

// maxLogLines bounds the per-container log buffer.
const maxLogLines = 10000

// logBuffer keeps the most recent output lines of a container.
type logBuffer struct {
	mu    sync.Mutex
	lines []string
}

func newLogBuffer() *logBuffer {
	return &logBuffer{}
}

// WriteLine appends one line.
func (b *logBuffer) WriteLine(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > maxLogLines {
		b.lines = b.lines[len(b.lines)-maxLogLines:]
	}
}

// Write appends every newline-terminated line in p.
func (b *logBuffer) Write(p []byte) {
	text := strings.TrimRight(string(p), "\n")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		b.WriteLine(line)
	}
}

// Lines returns a copy of the buffered lines.
func (b *logBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

func isNginx(imageRef string) bool {
	name, _ := validation.ParseImageReference(imageRef)
	return name == "nginx" || strings.HasSuffix(name, "/nginx")
}

// bannerFor returns the startup lines an image prints.
func bannerFor(imageRef string) []string {
	if isNginx(imageRef) {
		return []string{
			"/docker-entrypoint.sh: Configuration complete; ready for start up",
			"nginx: using the \"epoll\" event method",
			"nginx: " + NginxVersion,
			"nginx: start worker processes",
		}
	}
	return []string{"sandbox: container started from " + imageRef}
}

// execute runs cmd from the command table. It returns ctx.Err() when the
// context ends before the command completes.
func execute(ctx context.Context, p *process, cmd []string) (*domain.ExecResult, error) {
	var stdout, stderr bytes.Buffer
	code, err := run(ctx, p, cmd, &stdout, &stderr)
	if err != nil {
		return nil, err
	}
	return &domain.ExecResult{
		ExitCode: code,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}

func run(ctx context.Context, p *process, cmd []string, stdout, stderr *bytes.Buffer) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(cmd) == 0 {
		return 0, nil
	}

	name, args := cmd[0], cmd[1:]
	switch name {
	case "true", ":":
		return 0, nil
	case "false":
		return 1, nil
	case "echo":
		stdout.WriteString(strings.Join(args, " ") + "\n")
		return 0, nil
	case "pwd":
		stdout.WriteString("/\n")
		return 0, nil
	case "hostname":
		stdout.WriteString(hostnameOf(p) + "\n")
		return 0, nil
	case "env":
		for _, e := range p.env {
			stdout.WriteString(e + "\n")
		}
		return 0, nil
	case "exit":
		if len(args) == 0 {
			return 0, nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			stderr.WriteString("sh: exit: Illegal number: " + args[0] + "\n")
			return 2, nil
		}
		return n, nil
	case "sleep":
		return sleep(ctx, args, stderr)
	case "sh", "/bin/sh", "bash", "/bin/bash":
		if len(args) >= 2 && args[0] == "-c" {
			return script(ctx, p, args[1], stdout, stderr)
		}
		// An interactive shell without a terminal exits at once.
		return 0, nil
	case "nginx":
		if isNginx(p.image) {
			return nginx(args, stderr), nil
		}
	}

	fmt.Fprintf(stderr, "sh: %s: not found\n", name)
	return exitCodeNotFound, nil
}

func hostnameOf(p *process) string {
	if len(p.id) >= 12 {
		return p.id[:12]
	}
	return p.id
}

func sleep(ctx context.Context, args []string, stderr *bytes.Buffer) (int, error) {
	if len(args) == 0 {
		stderr.WriteString("sleep: missing operand\n")
		return 1, nil
	}
	secs, err := strconv.ParseFloat(args[0], 64)
	if err != nil || secs < 0 {
		stderr.WriteString("sleep: invalid time interval '" + args[0] + "'\n")
		return 1, nil
	}

	timer := time.NewTimer(time.Duration(secs * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
		return 0, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// script runs a `sh -c` body: statements separated by ";" or "&&".
// "&&" stops at the first failing statement. The last exit code wins.
func script(ctx context.Context, p *process, body string, stdout, stderr *bytes.Buffer) (int, error) {
	code := 0
	for _, stmt := range strings.Split(body, ";") {
		for _, part := range strings.Split(stmt, "&&") {
			fields := strings.Fields(part)
			if len(fields) == 0 {
				continue
			}
			var err error
			code, err = run(ctx, p, fields, stdout, stderr)
			if err != nil {
				return 0, err
			}
			if code != 0 {
				break
			}
		}
	}
	return code, nil
}

func nginx(args []string, stderr *bytes.Buffer) int {
	if len(args) == 0 {
		stderr.WriteString("nginx: [emerg] bind() to 0.0.0.0:80 failed (98: Address already in use)\n")
		return 1
	}
	switch args[0] {
	case "-v":
		stderr.WriteString("nginx version: " + NginxVersion + "\n")
		return 0
	case "-V":
		stderr.WriteString("nginx version: " + NginxVersion + "\n")
		stderr.WriteString("configure arguments: --prefix=/etc/nginx --sbin-path=/usr/sbin/nginx\n")
		return 0
	case "-t":
		stderr.WriteString("nginx: the configuration file /etc/nginx/nginx.conf syntax is ok\n")
		stderr.WriteString("nginx: configuration file /etc/nginx/nginx.conf test is successful\n")
		return 0
	case "-s":
		return 0
	}
	fmt.Fprintf(stderr, "nginx: invalid option: \"%s\"\n", strings.TrimLeft(args[0], "-"))
	return 1
}
