//go:build linux
// +build linux

package projfs

import (
	"bytes"
	"os"
	"strconv"

	"github.com/buildbarn/bb-storage/pkg/util"

	"google.golang.org/grpc/codes"
)

type systemProcessTable struct{}

func (pt systemProcessTable) GetProcessName(processID int) (string, error) {
	// The command line is a sequence of NUL terminated arguments.
	// Only the first one is returned.
	cmdline, err := os.ReadFile("/proc/" + strconv.FormatInt(int64(processID), 10) + "/cmdline")
	if err != nil {
		if os.IsNotExist(err) {
			return "", util.StatusWrapfWithCode(err, codes.NotFound, "Process %d does not exist", processID)
		}
		return "", util.StatusWrapfWithCode(err, codes.Internal, "Failed to read command line of process %d", processID)
	}
	if i := bytes.IndexByte(cmdline, 0); i >= 0 {
		cmdline = cmdline[:i]
	}
	return string(cmdline), nil
}

// SystemProcessTable corresponds with the process table of the locally
// running operating system. On this operating system the information is
// extracted from procfs.
var SystemProcessTable ProcessTable = systemProcessTable{}
