// Package gcthread provides a default, goroutine-backed
// gctask.ThreadFactory. It is a collaborator of package gctask, not part
// of its core: everything here is built on gctask's exported API
// (GetTask, NoteCompletion, ShouldRelease, NoteRelease, RunBarrier,
// RunIdle), the same boundary the core keeps with any other caller.
//
// The worker loop and its panic-recovery wrapper are adapted from the
// teacher's Worker.Start / Worker.executeTask goroutine loop.
package gcthread
