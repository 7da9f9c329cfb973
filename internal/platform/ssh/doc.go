// Package ssh implements remote and local command execution for the
// provisioning pipeline.
//
// [Executor.Run] opens one SSH connection per command, authenticating with
// a private key and/or the local SSH agent, and optionally forwards the
// agent so that commands on the configuration server can reach other
// nodes. Dial failures are classified into [platform.ConnectionFailure]
// and unsuccessful exits into [platform.NonZeroExit]; only connection
// failures are retried. [Executor.RunLocal] runs a shell command on the
// operator's machine with the same failure kinds.
//
// Host keys are not verified when strict checking is off. Otherwise they
// are checked against a known_hosts file. Silent runs, such as readiness
// probes, record the key of a host the file does not know yet, so later
// runs against a freshly booted instance pass verification.
package ssh
