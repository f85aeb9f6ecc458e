//go:build !unix

package main

import (
	"os"
	"os/exec"
)

// reexec starts a fresh copy of the binary and lets this one exit.
func reexec() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	c := exec.Command(exe, os.Args[1:]...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	c.Env = os.Environ()
	return c.Start()
}
