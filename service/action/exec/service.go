package exec

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/viant/afs/url"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	rssh "github.com/viant/gosh/runner/ssh"
	"github.com/viant/scy/cred/secret"
	"golang.org/x/crypto/ssh"
)

// ErrCommandFailed is returned when a command exits with a non-zero status
// and abortOnError is set.
var ErrCommandFailed = errors.New("command failed")

// Service runs shell commands on target hosts, keeping one session per host.
// A session runs one sub-job at a time; workdir and env are applied per
// command in a subshell so they never leak into later sub-jobs.
type Service struct {
	sessions map[string]*session
	mux      sync.Mutex
}

type session struct {
	shell *gosh.Service
	mux   sync.Mutex
}

// New creates a new Service instance
func New() *Service {
	return &Service{
		sessions: make(map[string]*session),
	}
}

// Execute runs input commands and fills output
func (s *Service) Execute(ctx context.Context, input *Input, output *Output) error {
	aSession, err := s.session(ctx, input.Host)
	if err != nil {
		return errors.Wrapf(err, "failed to open session to %v", input.Host.URL)
	}
	aSession.mux.Lock()
	defer aSession.mux.Unlock()
	output.Host = input.Host.URL

	timeout := time.Duration(input.TimeoutMs) * time.Millisecond
	if timeout == 0 {
		timeout = time.Minute
	}
	var stdout, stderr strings.Builder
	for _, cmd := range input.Commands {
		command := s.executeCommand(ctx, aSession.shell, cmd, input.wrap(cmd), timeout)
		output.Commands = append(output.Commands, command)
		output.Status = command.Status
		if command.Output != "" {
			stdout.WriteString(command.Output)
			stdout.WriteString("\n")
		}
		if command.Stderr != "" {
			stderr.WriteString(command.Stderr)
			stderr.WriteString("\n")
		}
		if input.AbortOnError && command.Status != 0 {
			output.Stdout = strings.TrimSpace(stdout.String())
			output.Stderr = strings.TrimSpace(stderr.String())
			return errors.Wrapf(ErrCommandFailed, "%v: exit status %v", cmd, command.Status)
		}
	}
	output.Stdout = strings.TrimSpace(stdout.String())
	output.Stderr = strings.TrimSpace(stderr.String())
	return nil
}

func (s *Service) executeCommand(ctx context.Context, shell *gosh.Service, cmd, line string, timeout time.Duration) *Command {
	command := &Command{Input: cmd}
	started := time.Now()
	stdout, status, err := shell.Run(ctx, line, runner.WithTimeout(int(timeout.Milliseconds())))
	if elapsed := time.Since(started); elapsed > timeout && err == nil {
		err = fmt.Errorf("command %v timed out after: %s", cmd, elapsed)
	}
	if err != nil && status == 0 {
		status = -1
	}
	command.Status = status
	if status == 0 {
		command.Output = stdout
		return command
	}
	if stdout == "" && err != nil {
		stdout = err.Error()
	}
	command.Stderr = stdout
	return command
}

func (s *Service) session(ctx context.Context, host *Host) (*session, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok := s.sessions[host.URL]; ok {
		return ret, nil
	}

	var shell *gosh.Service
	var err error
	if url.Host(host.URL) == "localhost" {
		shell, err = gosh.New(ctx, local.New())
	} else {
		var config *ssh.ClientConfig
		if config, err = sshConfig(ctx, host); err != nil {
			return nil, err
		}
		sshHost := url.Host(host.URL)
		if !strings.Contains(sshHost, ":") {
			sshHost += ":22"
		}
		shell, err = gosh.New(ctx, rssh.New(sshHost, config))
	}
	if err != nil {
		return nil, err
	}
	ret := &session{shell: shell}
	s.sessions[host.URL] = ret
	return ret, nil
}

func sshConfig(ctx context.Context, host *Host) (*ssh.ClientConfig, error) {
	credentials := host.Credentials
	if credentials == "" {
		credentials = "localhost"
	}
	generic, err := secret.New().GetCredentials(ctx, credentials)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load credentials %v", credentials)
	}
	return generic.SSH.Config(ctx)
}

// Close releases all sessions held by this service
func (s *Service) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	var result *multierror.Error
	for id, aSession := range s.sessions {
		if err := aSession.shell.Close(); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "failed to close session %s", id))
		}
	}
	s.sessions = make(map[string]*session)
	return result.ErrorOrNil()
}
