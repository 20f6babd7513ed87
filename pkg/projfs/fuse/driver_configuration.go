package fuse

// DriverConfiguration contains options that are applied to every FUSE
// mount created by the driver.
type DriverConfiguration struct {
	// FSName is reported as the source of the mount in the mount
	// table.
	FSName string
	// AllowOther permits users other than the one running the
	// driver to access the mount.
	AllowOther bool
	// DirectMount causes the mount to be created using mount(2)
	// instead of the fusermount helper.
	DirectMount bool
	// Debug causes all FUSE requests to be logged.
	Debug bool
	// ProjectStorageRoot causes the storage root to be marked as
	// not enumerated when a session starts, even if it does not
	// look like an uninitialized source tree. Hosts set this when
	// they have just created the storage root.
	ProjectStorageRoot bool
}
