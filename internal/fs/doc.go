// Package fs provides the filesystem seam used by the atomic writers.
//
// The package defines two interfaces:
//
//   - [File]: an open, writable file that can be synced
//   - [FileSystem]: temp-file creation, rename, remove and stat
//
// # Implementations
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test utility that injects write, sync, close and rename faults
//
// Production code uses fs.Default:
//
//	f, err := fs.Default.CreateTemp(dir, "gt-*.tmp")
//
// Tests wrap it to simulate a full disk halfway through a result file:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp", fs.Fault{FailAfterBytes: 1024})
//
// Operations take no context.Context: local syscalls are not interruptible.
// Remote storage goes through blobstore, which does.
package fs
