//go:build !linux

package cmd

import "fmt"

func countInstructions(f func() error) (instructions uint64, err error) {
	return 0, fmt.Errorf("instruction counting requires linux perf events")
}
