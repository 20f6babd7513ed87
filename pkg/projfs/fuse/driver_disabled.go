//go:build !linux
// +build !linux

package fuse

import (
	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/buildbarn/bb-storage/pkg/clock"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type driver struct{}

// NewDriver creates a projfs.Driver that exposes the storage root at
// the virtualization root through a FUSE mount.
//
// This is a placeholder implementation for operating systems other
// than Linux, as placeholders are tracked using Linux specific
// extended attribute semantics.
func NewDriver(clock clock.Clock, configuration DriverConfiguration) projfs.Driver {
	return driver{}
}

func (driver) NewSession(storageRoot, virtualizationRoot string, handlers projfs.Handlers, options projfs.MountOptions) (projfs.NativeSession, error) {
	return nil, status.Error(codes.Unimplemented, "Projecting file systems over FUSE is only supported on Linux")
}
