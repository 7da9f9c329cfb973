// Package chef builds the shell commands that install the configuration
// server, register nodes with it and trigger client runs.
//
// Commands are plain strings executed through a RemoteExecutor; nothing in
// this package talks to the network.
package chef
