package mock

//go:generate mockgen -package mock -destination cas.go github.com/buildbarn/bb-projfs/pkg/cas DirectoryFetcher,FileFetcher,PlaceholderWriter
//go:generate mockgen -package mock -destination projfs.go github.com/buildbarn/bb-projfs/pkg/projfs Callbacks,Driver,NativeSession,ProcessTable
//go:generate mockgen -package mock -destination storage_clock.go github.com/buildbarn/bb-storage/pkg/clock Clock,Timer
//go:generate mockgen -package mock -destination storage_util.go github.com/buildbarn/bb-storage/pkg/util ErrorLogger
