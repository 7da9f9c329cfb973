package ssh

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/inception/internal/platform"
)

// Connection failure reasons reported in platform.ConnectionFailure.
const (
	ReasonNoRoute  = "No route to host"
	ReasonTimedOut = "Connection timed out"
	ReasonRefused  = "Connection refused"
	ReasonReset    = "Connection reset by peer"
	ReasonClosed   = "Connection closed by remote host"
)

// classifyDialError maps a dial or handshake error onto a
// ConnectionFailure when the host is unreachable. Other errors, such as
// authentication or host key mismatches, are returned unchanged.
func classifyDialError(host string, err error) error {
	if reason := connectionReason(err); reason != "" {
		return &platform.ConnectionFailure{Host: host, Reason: reason, Err: err}
	}
	return err
}

func connectionReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return ReasonNoRoute
	case errors.Is(err, syscall.ECONNREFUSED):
		return ReasonRefused
	case errors.Is(err, syscall.ECONNRESET):
		return ReasonReset
	case errors.Is(err, syscall.ETIMEDOUT):
		return ReasonTimedOut
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrUnexpectedEOF):
		return ReasonClosed
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimedOut
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no route to host"):
		return ReasonNoRoute
	case strings.Contains(msg, "timed out"), strings.Contains(msg, "i/o timeout"):
		return ReasonTimedOut
	case strings.Contains(msg, "connection refused"):
		return ReasonRefused
	case strings.Contains(msg, "connection reset"):
		return ReasonReset
	case strings.Contains(msg, "connection closed"):
		return ReasonClosed
	}
	return ""
}

// classifySessionError maps the result of a finished session.
func classifySessionError(host, command string, out platform.Output, err error) error {
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return &platform.NonZeroExit{
			Host:       host,
			Command:    command,
			ExitStatus: exitErr.ExitStatus(),
			Output:     out,
		}
	}
	var missing *ssh.ExitMissingError
	if errors.As(err, &missing) {
		return &platform.ConnectionFailure{Host: host, Reason: ReasonClosed, Err: err}
	}
	return classifyDialError(host, err)
}

// IsConnectionFailure reports whether err is a platform.ConnectionFailure.
func IsConnectionFailure(err error) bool {
	var cf *platform.ConnectionFailure
	return errors.As(err, &cf)
}
