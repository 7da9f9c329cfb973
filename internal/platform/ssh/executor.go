package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/imamik/inception/internal/platform"
	"github.com/imamik/inception/internal/util/retry"
)

const (
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 5
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds executor configuration.
type Config struct {
	// PrivateKey is a PEM encoded private key. Optional when an agent is set.
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the number of connection retries after the first attempt.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// StrictHostKeys enables host key verification. Silent runs record the
	// key of a host missing from KnownHostsFile instead of rejecting it.
	StrictHostKeys bool

	// KnownHostsFile is consulted when StrictHostKeys is set.
	// If empty, ~/.ssh/known_hosts is used.
	KnownHostsFile string

	// Stdout and Stderr receive mirrored output for ScreenOutput runs.
	// If nil, os.Stdout and os.Stderr are used.
	Stdout io.Writer
	Stderr io.Writer
}

// Option configures an Executor.
type Option func(*Executor)

// WithAgent authenticates through, and forwards, the given SSH agent.
func WithAgent(a agent.Agent) Option {
	return func(e *Executor) {
		e.agent = a
	}
}

// Executor runs commands on remote hosts over SSH and locally via sh.
// It is safe for concurrent use; every Run opens its own connection.
type Executor struct {
	config Config
	signer ssh.Signer
	agent  agent.Agent

	hostKeysMu sync.Mutex
	hostKeys   ssh.HostKeyCallback
}

// NewExecutor creates an executor and validates its credentials.
func NewExecutor(cfg *Config, opts ...Option) (*Executor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	e := &Executor{config: *cfg}
	for _, opt := range opts {
		opt(e)
	}

	if e.config.DialTimeout == 0 {
		e.config.DialTimeout = defaultDialTimeout
	}
	if e.config.MaxRetries == 0 {
		e.config.MaxRetries = defaultMaxRetries
	}
	if e.config.RetryDelay == 0 {
		e.config.RetryDelay = defaultRetryDelay
	}
	if e.config.Stdout == nil {
		e.config.Stdout = os.Stdout
	}
	if e.config.Stderr == nil {
		e.config.Stderr = os.Stderr
	}

	if len(e.config.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(e.config.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		e.signer = signer
	}
	if e.signer == nil && e.agent == nil {
		return nil, fmt.Errorf("no SSH credentials: provide a private key or an SSH agent")
	}

	return e, nil
}

// ConnectAgent dials the agent advertised by SSH_AUTH_SOCK. The returned
// close function releases the socket.
func ConnectAgent() (agent.ExtendedAgent, func() error, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, nil, fmt.Errorf("SSH_AUTH_SOCK is not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to SSH agent: %w", err)
	}
	return agent.NewClient(conn), conn.Close, nil
}

// KeyringAgent returns an in-process agent holding the given PEM encoded
// private key. It stands in for a local agent when only a key file is
// available, so the key can still be forwarded.
func KeyringAgent(privateKey []byte) (agent.Agent, error) {
	raw, err := ssh.ParseRawPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	keyring := agent.NewKeyring()
	if err := keyring.Add(agent.AddedKey{PrivateKey: raw}); err != nil {
		return nil, fmt.Errorf("failed to load key into agent: %w", err)
	}
	return keyring, nil
}

// Run executes command on target and returns its output. Connection
// failures are retried unless opts.SingleAttempt is set.
func (e *Executor) Run(ctx context.Context, target platform.Target, command string, opts platform.RunOptions) (platform.Output, error) {
	if opts.AgentForwarding && e.agent == nil {
		return platform.Output{}, fmt.Errorf("agent forwarding requested for %s but no SSH agent is configured", target.Host)
	}

	client, err := e.connect(ctx, target, opts)
	if err != nil {
		return platform.Output{}, err
	}
	defer func() { _ = client.Close() }()

	if opts.AgentForwarding {
		if err := agent.ForwardToAgent(client, e.agent); err != nil {
			return platform.Output{}, fmt.Errorf("failed to set up agent forwarding to %s: %w", target.Host, err)
		}
	}

	return e.runCommand(ctx, client, target.Host, command, opts)
}

// connect establishes an SSH connection with retry logic.
func (e *Executor) connect(ctx context.Context, target platform.Target, opts platform.RunOptions) (*ssh.Client, error) {
	hostKeyCallback, err := e.hostKeyCallback(opts.Silent)
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            target.User,
		Auth:            e.authMethods(),
		HostKeyCallback: hostKeyCallback,
		Timeout:         e.config.DialTimeout,
	}
	addr := target.Address()

	dial := func() (*ssh.Client, error) {
		d := net.Dialer{Timeout: e.config.DialTimeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, classifyDialError(target.Host, err)
		}
		c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
		if err != nil {
			_ = conn.Close()
			return nil, classifyDialError(target.Host, err)
		}
		return ssh.NewClient(c, chans, reqs), nil
	}

	if opts.SingleAttempt {
		return dial()
	}

	var client *ssh.Client
	err = retry.Do(ctx, func() error {
		c, dialErr := dial()
		if dialErr != nil {
			return dialErr
		}
		client = c
		return nil
	},
		retry.WithMaxRetries(e.config.MaxRetries),
		retry.WithInitialDelay(e.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
		retry.WithRetryIf(IsConnectionFailure),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return client, nil
}

func (e *Executor) authMethods() []ssh.AuthMethod {
	var methods []ssh.AuthMethod
	if e.signer != nil {
		methods = append(methods, ssh.PublicKeys(e.signer))
	}
	if e.agent != nil {
		methods = append(methods, ssh.PublicKeysCallback(e.agent.Signers))
	}
	return methods
}

func (e *Executor) hostKeyCallback(silent bool) (ssh.HostKeyCallback, error) {
	if !e.config.StrictHostKeys {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // verification disabled by configuration
	}
	if silent {
		return e.trustOnFirstUse, nil
	}
	cb, _, err := e.knownHosts(false)
	return cb, err
}

// knownHosts returns the verifier for the known_hosts file together with its
// path. With create set, a missing file and its directory are created.
func (e *Executor) knownHosts(create bool) (ssh.HostKeyCallback, string, error) {
	e.hostKeysMu.Lock()
	defer e.hostKeysMu.Unlock()

	path, err := e.knownHostsPath()
	if err != nil {
		return nil, "", err
	}
	if e.hostKeys != nil {
		return e.hostKeys, path, nil
	}
	if create {
		if err := ensureFile(path); err != nil {
			return nil, "", fmt.Errorf("failed to create known_hosts %s: %w", path, err)
		}
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load known_hosts %s: %w", path, err)
	}
	e.hostKeys = cb
	return cb, path, nil
}

func (e *Executor) knownHostsPath() (string, error) {
	if e.config.KnownHostsFile != "" {
		return e.config.KnownHostsFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate known_hosts: %w", err)
	}
	return filepath.Join(home, ".ssh", "known_hosts"), nil
}

// trustOnFirstUse records the key of a host missing from known_hosts and
// verifies every other host against it. A changed key is still rejected.
func (e *Executor) trustOnFirstUse(hostname string, remote net.Addr, key ssh.PublicKey) error {
	cb, path, err := e.knownHosts(true)
	if err != nil {
		return err
	}
	err = cb(hostname, remote, key)
	var keyErr *knownhosts.KeyError
	if err == nil || !errors.As(err, &keyErr) || len(keyErr.Want) > 0 {
		return err
	}

	e.hostKeysMu.Lock()
	defer e.hostKeysMu.Unlock()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open known_hosts %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := fmt.Fprintln(f, knownhosts.Line([]string{hostname}, key)); err != nil {
		return fmt.Errorf("failed to record host key of %s: %w", hostname, err)
	}
	// Reload on next use so strict runs see the new entry.
	e.hostKeys = nil
	return nil
}

func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	return f.Close()
}

// runCommand executes a command on an established connection. The session
// is closed when ctx is done.
func (e *Executor) runCommand(ctx context.Context, client *ssh.Client, host, command string, opts platform.RunOptions) (platform.Output, error) {
	session, err := client.NewSession()
	if err != nil {
		return platform.Output{}, classifyDialError(host, fmt.Errorf("failed to create SSH session on %s: %w", host, err))
	}
	defer func() { _ = session.Close() }()

	if opts.AgentForwarding {
		if err := agent.RequestAgentForwarding(session); err != nil {
			return platform.Output{}, fmt.Errorf("agent forwarding refused by %s: %w", host, err)
		}
	}

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	var screens []*prefixWriter
	if opts.ScreenOutput {
		outScreen := newPrefixWriter(host, e.config.Stdout)
		errScreen := newPrefixWriter(host, e.config.Stderr)
		screens = append(screens, outScreen, errScreen)
		session.Stdout = io.MultiWriter(&stdout, outScreen)
		session.Stderr = io.MultiWriter(&stderr, errScreen)
	}

	if err := session.Start(command); err != nil {
		return platform.Output{}, fmt.Errorf("failed to start command on %s: %w", host, err)
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case err = <-done:
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		<-done
		err = ctx.Err()
	}

	for _, s := range screens {
		_ = s.Flush()
	}

	out := platform.Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return out, fmt.Errorf("command on %s interrupted: %w", host, err)
	}
	return out, classifySessionError(host, command, out, err)
}
