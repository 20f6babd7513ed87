package projfs

// PlaceholderIDLength is the size in bytes of the provider ID and
// content ID attached to placeholder files.
const PlaceholderIDLength = 128

// ProjectionState is the materialization state of a path, as tracked
// by the driver. It is always queried from the driver and never cached.
type ProjectionState int

const (
	// ProjectionStateUnknown is reported for paths for which no
	// state could be determined, such as sockets and FIFOs. It must
	// be treated like ProjectionStateFull.
	ProjectionStateUnknown ProjectionState = iota
	// ProjectionStateEmpty indicates that the path is a placeholder
	// whose contents (or children, for directories) have not been
	// materialized yet.
	ProjectionStateEmpty
	// ProjectionStatePlaceholder indicates that the contents of the
	// path have been materialized, but that the path is still tagged
	// with the provider's identifiers.
	ProjectionStatePlaceholder
	// ProjectionStateFull indicates that the path is no longer
	// tracked by the provider. It may contain data that only exists
	// locally.
	ProjectionStateFull
)

func (s ProjectionState) String() string {
	switch s {
	case ProjectionStateEmpty:
		return "Empty"
	case ProjectionStatePlaceholder:
		return "Placeholder"
	case ProjectionStateFull:
		return "Full"
	default:
		return "Unknown"
	}
}

// UpdateFailureCause is reported by operations that delete or update
// placeholders to indicate why the change was not applied.
type UpdateFailureCause int

const (
	// UpdateFailureCauseNoFailure indicates that the operation was
	// not refused.
	UpdateFailureCauseNoFailure UpdateFailureCause = iota
	// UpdateFailureCauseReadOnly indicates that the path could not
	// be changed due to its permissions.
	UpdateFailureCauseReadOnly
	// UpdateFailureCauseDirtyData indicates that the path contains
	// data that would be lost if the change were applied.
	UpdateFailureCauseDirtyData
)

func (c UpdateFailureCause) String() string {
	switch c {
	case UpdateFailureCauseNoFailure:
		return "NoFailure"
	case UpdateFailureCauseReadOnly:
		return "ReadOnly"
	case UpdateFailureCauseDirtyData:
		return "DirtyData"
	default:
		return "Unknown"
	}
}

// UpdateType is a set of flags that callers of DeleteFile(),
// UpdatePlaceholderIfNeeded() and ReplacePlaceholderFileWithSymLink()
// may provide to relax the checks that are performed.
type UpdateType uint32

const (
	// UpdateTypeAllowDirtyMetadata permits changing paths whose
	// metadata has been modified locally.
	UpdateTypeAllowDirtyMetadata UpdateType = 1 << iota
	// UpdateTypeAllowDirtyData permits changing paths whose
	// contents have been modified locally.
	UpdateTypeAllowDirtyData
	// UpdateTypeAllowReadOnly permits changing read-only paths.
	UpdateTypeAllowReadOnly
)

func validatePlaceholderIDs(providerID, contentID []byte) {
	if len(providerID) != PlaceholderIDLength {
		panic("Provider ID must be exactly 128 bytes in size")
	}
	if len(contentID) != PlaceholderIDLength {
		panic("Content ID must be exactly 128 bytes in size")
	}
}
