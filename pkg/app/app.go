// Package app holds what the cmd/* binaries share when starting a process.
package app

// Runner is a process that runs until it is told to stop.
type Runner interface {
	Run() error
}
