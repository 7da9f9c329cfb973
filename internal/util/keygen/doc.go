// Package keygen generates SSH key pairs.
//
// Keys are produced in PEM format (private) and OpenSSH authorized_keys
// format (public). The executor tests use them for throwaway client and
// host keys.
package keygen
