package projfs

import (
	"syscall"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Result of an operation that crosses the boundary between the
// virtualization driver and the content provider. Every callback and
// every outbound operation returns exactly one Result.
type Result int

const (
	// ResultSuccess indicates that the operation succeeded.
	ResultSuccess Result = iota
	// ResultInvalid is the catch-all for failures that cannot be
	// classified any further, including native failures.
	ResultInvalid
	// ResultErrIO indicates that the operation failed due to an I/O
	// error.
	ResultErrIO
	// ResultErrAccessDenied indicates that permission was denied.
	// Permission checking events translate this into a deny
	// response.
	ResultErrAccessDenied
	// ResultErrFileNotFound indicates that the file does not exist.
	ResultErrFileNotFound
	// ResultErrPathNotFound indicates that one of the parent
	// directories of the path does not exist.
	ResultErrPathNotFound
	// ResultErrDirectoryNotEmpty indicates that an attempt was made
	// to remove a directory that still has children.
	ResultErrDirectoryNotEmpty
	// ResultErrVirtualizationInvalidOperation indicates that the
	// operation was refused, because it would destroy data that the
	// provider does not track.
	ResultErrVirtualizationInvalidOperation
	// ResultErrDriverNotLoaded indicates that no virtualization
	// session is active.
	ResultErrDriverNotLoaded
	// ResultErrNotYetImplemented indicates that the operation is not
	// supported.
	ResultErrNotYetImplemented
)

var resultErrnos = [...]syscall.Errno{
	ResultSuccess:                           0,
	ResultInvalid:                           syscall.EINVAL,
	ResultErrIO:                             syscall.EIO,
	ResultErrAccessDenied:                   syscall.EPERM,
	ResultErrFileNotFound:                   syscall.ENOENT,
	ResultErrPathNotFound:                   syscall.ENOTDIR,
	ResultErrDirectoryNotEmpty:              syscall.ENOTEMPTY,
	ResultErrVirtualizationInvalidOperation: syscall.EOPNOTSUPP,
	ResultErrDriverNotLoaded:                syscall.ENODEV,
	ResultErrNotYetImplemented:              syscall.ENOSYS,
}

var resultNames = [...]string{
	ResultSuccess:                           "Success",
	ResultInvalid:                           "Invalid",
	ResultErrIO:                             "EIOError",
	ResultErrAccessDenied:                   "EAccessDenied",
	ResultErrFileNotFound:                   "EFileNotFound",
	ResultErrPathNotFound:                   "EPathNotFound",
	ResultErrDirectoryNotEmpty:              "EDirectoryNotEmpty",
	ResultErrVirtualizationInvalidOperation: "EVirtualizationInvalidOperation",
	ResultErrDriverNotLoaded:                "EDriverNotLoaded",
	ResultErrNotYetImplemented:              "ENotYetImplemented",
}

var resultCodes = [...]codes.Code{
	ResultSuccess:                           codes.OK,
	ResultInvalid:                           codes.InvalidArgument,
	ResultErrIO:                             codes.Internal,
	ResultErrAccessDenied:                   codes.PermissionDenied,
	ResultErrFileNotFound:                   codes.NotFound,
	ResultErrPathNotFound:                   codes.NotFound,
	ResultErrDirectoryNotEmpty:              codes.FailedPrecondition,
	ResultErrVirtualizationInvalidOperation: codes.FailedPrecondition,
	ResultErrDriverNotLoaded:                codes.Unavailable,
	ResultErrNotYetImplemented:              codes.Unimplemented,
}

// AllResults lists every Result in declaration order.
var AllResults = []Result{
	ResultSuccess,
	ResultInvalid,
	ResultErrIO,
	ResultErrAccessDenied,
	ResultErrFileNotFound,
	ResultErrPathNotFound,
	ResultErrDirectoryNotEmpty,
	ResultErrVirtualizationInvalidOperation,
	ResultErrDriverNotLoaded,
	ResultErrNotYetImplemented,
}

func (r Result) isValid() bool {
	return r >= 0 && int(r) < len(resultErrnos)
}

// Errno returns the (positive) error number that corresponds with the
// Result. ResultSuccess maps to zero. The driver expects the negated
// value.
func (r Result) Errno() syscall.Errno {
	if !r.isValid() {
		panic("Unknown result")
	}
	return resultErrnos[r]
}

func (r Result) String() string {
	if !r.isValid() {
		return "Unknown"
	}
	return resultNames[r]
}

// Err converts the Result to a gRPC status error, so that it can be
// logged and wrapped like any other error. ResultSuccess yields nil.
func (r Result) Err() error {
	if r == ResultSuccess {
		return nil
	}
	if !r.isValid() {
		return status.Errorf(codes.Unknown, "Unknown result %d", int(r))
	}
	return status.Errorf(resultCodes[r], "%s (%s)", r.String(), r.Errno().Error())
}

// ResultFromErrno converts an error number reported by the driver back
// to a Result. Both positive and negative values are accepted. Error
// numbers for which no Result exists are mapped to ResultInvalid.
func ResultFromErrno(errno syscall.Errno) Result {
	if int64(errno) < 0 {
		errno = -errno
	}
	for r, e := range resultErrnos {
		if e == errno {
			return Result(r)
		}
	}
	return ResultInvalid
}

// negativeErrno returns the value the driver expects for a Result.
func (r Result) negativeErrno() int32 {
	return -int32(r.Errno())
}
