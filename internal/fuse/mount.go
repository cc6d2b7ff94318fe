//go:build !linux
// +build !linux

package fuse

import (
	"fmt"

	"github.com/ntfsdig/ntfsdig/pkg/ntfs"
)

func Mount(mountpoint string, files []ntfs.MftFile) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
