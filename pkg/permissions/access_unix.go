//go:build unix

package permissions

import "golang.org/x/sys/unix"

func defaultAccess(path string) error {
	return unix.Access(path, unix.R_OK)
}
