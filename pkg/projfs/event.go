package projfs

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EventMask is the set of flags attached to an event, describing the
// kind of operation and its context. Bit positions are shared with
// fanotify where an equivalent exists.
type EventMask uint64

const (
	// EventMaskCloseWrite is set when a file that was opened for
	// writing is closed.
	EventMaskCloseWrite EventMask = 0x00000008
	// EventMaskMove is set when a file or directory is renamed.
	EventMaskMove EventMask = 0x00000040
	// EventMaskCreate is set when a file or directory is created,
	// or when a hard link is created.
	EventMaskCreate EventMask = 0x00000100
	// EventMaskOpenPerm is set when the driver asks whether a
	// placeholder file may be opened for writing.
	EventMaskOpenPerm EventMask = 0x00010000
	// EventMaskDeletePerm is set when the driver asks whether a
	// file or directory may be removed.
	EventMaskDeletePerm EventMask = 0x00040000
	// EventMaskOnLink is set when the event concerns a hard link.
	EventMaskOnLink EventMask = 0x10000000
	// EventMaskOnDir is set when the event concerns a directory.
	EventMaskOnDir EventMask = 0x40000000
)

const (
	// PermissionAllow is returned for permission checking events to
	// let the operation proceed.
	PermissionAllow int32 = 0x01
	// PermissionDeny is returned for permission checking events to
	// refuse the operation with EPERM.
	PermissionDeny int32 = 0x02
)

const (
	eventRecordVersion      = 1
	eventRecordHeaderLength = 32
)

// Event is a single notification sent by the driver. Path is relative
// to the virtualization root. TargetPath is only provided for rename
// and hard link events.
type Event struct {
	ProcessID      int32
	Mask           EventMask
	Path           string
	TargetPath     string
	HasTargetPath  bool
	FileDescriptor int32
}

// IsDirectory returns whether the event concerns a directory.
func (ev *Event) IsDirectory() bool {
	return ev.Mask&EventMaskOnDir != 0
}

// MarshalBinary converts an event to the record format that is passed
// from the driver to the event handlers.
//
// The record starts with a fixed size header:
//
//	offset  size  field
//	0       4     total record length
//	4       2     version
//	6       2     header length
//	8       8     mask
//	16      4     process ID
//	20      4     file descriptor, or -1
//	24      4     size of the path buffer
//	28      4     size of the target path buffer, or 0
//
// The header is followed by the NUL terminated path buffers. All
// integers are little endian.
func (ev *Event) MarshalBinary() ([]byte, error) {
	if !utf8.ValidString(ev.Path) || !utf8.ValidString(ev.TargetPath) {
		return nil, status.Error(codes.InvalidArgument, "Event paths must be valid UTF-8")
	}
	if strings.IndexByte(ev.Path, 0) >= 0 || strings.IndexByte(ev.TargetPath, 0) >= 0 {
		return nil, status.Error(codes.InvalidArgument, "Event paths may not contain NUL bytes")
	}
	pathLength := len(ev.Path) + 1
	targetPathLength := 0
	if ev.HasTargetPath {
		targetPathLength = len(ev.TargetPath) + 1
	}
	recordLength := eventRecordHeaderLength + pathLength + targetPathLength

	record := make([]byte, eventRecordHeaderLength, recordLength)
	binary.LittleEndian.PutUint32(record[0:], uint32(recordLength))
	binary.LittleEndian.PutUint16(record[4:], eventRecordVersion)
	binary.LittleEndian.PutUint16(record[6:], eventRecordHeaderLength)
	binary.LittleEndian.PutUint64(record[8:], uint64(ev.Mask))
	binary.LittleEndian.PutUint32(record[16:], uint32(ev.ProcessID))
	binary.LittleEndian.PutUint32(record[20:], uint32(ev.FileDescriptor))
	binary.LittleEndian.PutUint32(record[24:], uint32(pathLength))
	binary.LittleEndian.PutUint32(record[28:], uint32(targetPathLength))
	record = append(record, ev.Path...)
	record = append(record, 0)
	if ev.HasTargetPath {
		record = append(record, ev.TargetPath...)
		record = append(record, 0)
	}
	return record, nil
}

// decodePathBuffer extracts the string stored in a NUL terminated
// buffer. Bytes following the terminator are ignored.
func decodePathBuffer(buffer []byte, name string) (string, error) {
	end := bytes.IndexByte(buffer, 0)
	if end < 0 {
		return "", status.Errorf(codes.InvalidArgument, "%s is not NUL terminated", name)
	}
	if !utf8.Valid(buffer[:end]) {
		return "", status.Errorf(codes.InvalidArgument, "%s is not valid UTF-8", name)
	}
	return string(buffer[:end]), nil
}

// UnmarshalEvent decodes a record created by Event.MarshalBinary().
// Records that are truncated, have inconsistent lengths, or contain
// paths that are not valid UTF-8 are rejected.
func UnmarshalEvent(record []byte) (*Event, error) {
	if len(record) < eventRecordHeaderLength {
		return nil, status.Errorf(codes.InvalidArgument, "Event record is %d bytes in size, while the header is %d bytes in size", len(record), eventRecordHeaderLength)
	}
	recordLength := binary.LittleEndian.Uint32(record[0:])
	if uint64(recordLength) != uint64(len(record)) {
		return nil, status.Errorf(codes.InvalidArgument, "Event record claims to be %d bytes in size, while %d bytes were provided", recordLength, len(record))
	}
	if version := binary.LittleEndian.Uint16(record[4:]); version != eventRecordVersion {
		return nil, status.Errorf(codes.InvalidArgument, "Unsupported event record version %d", version)
	}
	headerLength := binary.LittleEndian.Uint16(record[6:])
	if headerLength != eventRecordHeaderLength {
		return nil, status.Errorf(codes.InvalidArgument, "Unsupported event record header length %d", headerLength)
	}
	pathLength := uint64(binary.LittleEndian.Uint32(record[24:]))
	targetPathLength := uint64(binary.LittleEndian.Uint32(record[28:]))
	if uint64(headerLength)+pathLength+targetPathLength != uint64(recordLength) {
		return nil, status.Error(codes.InvalidArgument, "Event record path buffer sizes do not match the record size")
	}

	pathStart := uint64(headerLength)
	path, err := decodePathBuffer(record[pathStart:pathStart+pathLength], "Path")
	if err != nil {
		return nil, err
	}
	ev := &Event{
		Mask:           EventMask(binary.LittleEndian.Uint64(record[8:])),
		ProcessID:      int32(binary.LittleEndian.Uint32(record[16:])),
		FileDescriptor: int32(binary.LittleEndian.Uint32(record[20:])),
		Path:           path,
	}
	if targetPathLength > 0 {
		targetPathStart := pathStart + pathLength
		targetPath, err := decodePathBuffer(record[targetPathStart:targetPathStart+targetPathLength], "Target path")
		if err != nil {
			return nil, err
		}
		ev.TargetPath = targetPath
		ev.HasTargetPath = true
	}
	return ev, nil
}
