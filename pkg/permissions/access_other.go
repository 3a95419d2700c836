//go:build !unix

package permissions

import "os"

func defaultAccess(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
