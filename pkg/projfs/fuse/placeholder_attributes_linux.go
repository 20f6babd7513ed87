//go:build linux
// +build linux

package fuse

import (
	"strings"

	"golang.org/x/sys/unix"
)

// Extended attributes that are stored on files in the storage root to
// track their projection state. They are hidden from users of the
// mount.
const (
	xattrPrefix     = "user.projection."
	xattrEmpty      = xattrPrefix + "empty"
	xattrProviderID = xattrPrefix + "providerid"
	xattrContentID  = xattrPrefix + "contentid"
)

func isProjectionAttribute(name string) bool {
	return strings.HasPrefix(name, xattrPrefix)
}

// hasEmptyFlag returns whether a file or directory has not been
// hydrated yet.
func hasEmptyFlag(path string) (bool, error) {
	if _, err := unix.Lgetxattr(path, xattrEmpty, nil); err != nil {
		if err == unix.ENODATA {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func setEmptyFlag(path string) error {
	return unix.Lsetxattr(path, xattrEmpty, []byte{'y'}, 0)
}

func clearEmptyFlag(path string) error {
	if err := unix.Lremovexattr(path, xattrEmpty); err != nil && err != unix.ENODATA {
		return err
	}
	return nil
}

// getPlaceholderIDs copies the provider ID and content ID of a
// placeholder file into the provided buffers.
func getPlaceholderIDs(path string, providerID, contentID []byte) error {
	if _, err := unix.Lgetxattr(path, xattrProviderID, providerID); err != nil {
		return err
	}
	_, err := unix.Lgetxattr(path, xattrContentID, contentID)
	return err
}

func hasPlaceholderIDs(path string) (bool, error) {
	if _, err := unix.Lgetxattr(path, xattrProviderID, nil); err != nil {
		if err == unix.ENODATA {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func setPlaceholderIDs(path string, providerID, contentID []byte) error {
	if err := unix.Lsetxattr(path, xattrProviderID, providerID, 0); err != nil {
		return err
	}
	return unix.Lsetxattr(path, xattrContentID, contentID, 0)
}

// removePlaceholderIDs turns a placeholder file into a full file,
// meaning the provider may no longer replace it.
func removePlaceholderIDs(path string) error {
	for _, name := range []string{xattrProviderID, xattrContentID} {
		if err := unix.Lremovexattr(path, name); err != nil && err != unix.ENODATA {
			return err
		}
	}
	return nil
}
