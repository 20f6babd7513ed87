//go:build linux
// +build linux

package fuse

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
)

// threadGroupID returns the ID of the process that a thread belongs
// to, based on the "Tgid" field in procfs. If the thread no longer
// exists, the thread ID is returned, as it is identical to the
// process ID for single threaded processes.
func threadGroupID(threadID uint32) uint32 {
	status, err := os.ReadFile("/proc/" + strconv.FormatUint(uint64(threadID), 10) + "/status")
	if err != nil {
		return threadID
	}
	scanner := bufio.NewScanner(bytes.NewReader(status))
	for scanner.Scan() {
		if value, ok := bytes.CutPrefix(scanner.Bytes(), []byte("Tgid:")); ok {
			tgid, err := strconv.ParseUint(string(bytes.TrimSpace(value)), 10, 32)
			if err != nil {
				return threadID
			}
			return uint32(tgid)
		}
	}
	return threadID
}
