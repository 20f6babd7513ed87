//go:build !linux
// +build !linux

package projfs

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type systemProcessTable struct{}

func (pt systemProcessTable) GetProcessName(processID int) (string, error) {
	return "", status.Error(codes.Unimplemented, "Obtaining process names is not supported on this platform")
}

// SystemProcessTable corresponds with the process table of the locally
// running operating system. On this operating system process names
// cannot be obtained.
var SystemProcessTable ProcessTable = systemProcessTable{}
