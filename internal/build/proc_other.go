//go:build !unix

package build

import "os/exec"

// configureProcess keeps exec's default cancellation, which kills only the
// tool itself.
func configureProcess(cmd *exec.Cmd) {}
