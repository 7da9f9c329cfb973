package ssh

import (
	"io"
	"net"
	"strconv"
	"sync"
	"testing"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/inception/internal/platform"
	"github.com/imamik/inception/internal/util/keygen"
)

// commandHandler answers one exec request with output and an exit status.
type commandHandler func(command string) (stdout, stderr string, status uint32)

// testServer is a minimal in-process SSH server accepting any public key.
type testServer struct {
	listener net.Listener
	hostKey  ssh.PublicKey

	mu             sync.Mutex
	commands       []string
	agentRequested bool
}

func newTestServer(t *testing.T, handler commandHandler) *testServer {
	t.Helper()

	hostPair, err := keygen.GenerateED25519KeyPair("host")
	if err != nil {
		t.Fatalf("failed to generate host key: %v", err)
	}
	hostSigner, err := hostPair.Signer()
	if err != nil {
		t.Fatalf("failed to parse host key: %v", err)
	}

	cfg := &ssh.ServerConfig{
		PublicKeyCallback: func(ssh.ConnMetadata, ssh.PublicKey) (*ssh.Permissions, error) {
			return nil, nil
		},
	}
	cfg.AddHostKey(hostSigner)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	ts := &testServer{listener: ln, hostKey: hostSigner.PublicKey()}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go ts.serve(conn, cfg, handler)
		}
	}()
	return ts
}

func (ts *testServer) target() platform.Target {
	host, port, _ := net.SplitHostPort(ts.listener.Addr().String())
	p, _ := strconv.Atoi(port)
	return platform.Target{Host: host, User: "ubuntu", Port: p}
}

func (ts *testServer) received() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]string(nil), ts.commands...)
}

func (ts *testServer) serve(conn net.Conn, cfg *ssh.ServerConfig, handler commandHandler) {
	_, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		_ = conn.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		go ts.session(ch, requests, handler)
	}
}

func (ts *testServer) session(ch ssh.Channel, requests <-chan *ssh.Request, handler commandHandler) {
	defer func() { _ = ch.Close() }()
	for req := range requests {
		switch req.Type {
		case "auth-agent-req@openssh.com":
			ts.mu.Lock()
			ts.agentRequested = true
			ts.mu.Unlock()
			_ = req.Reply(true, nil)
		case "exec":
			var payload struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)
				return
			}
			_ = req.Reply(true, nil)

			ts.mu.Lock()
			ts.commands = append(ts.commands, payload.Command)
			ts.mu.Unlock()

			stdout, stderr, status := handler(payload.Command)
			_, _ = io.WriteString(ch, stdout)
			_, _ = io.WriteString(ch.Stderr(), stderr)
			_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
			return
		default:
			_ = req.Reply(false, nil)
		}
	}
}
