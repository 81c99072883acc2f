// Package lightfs implements a small filesystem simulated inside a single
// container file.
//
// A container holds a fixed-capacity metadata region (a length-prefixed
// JSON entry map plus a per-block occupancy byte array) followed by a
// fixed-count array of fixed-size data blocks. Entries are flat: names map
// to descriptors, folders are a flag only, there is no nesting.
//
// # Quick Start
//
//	fs, err := lightfs.New("light.fs")
//	if err != nil {
//	    panic(err)
//	}
//	if err := fs.Initialize(); err != nil {  // or fs.Load() for an existing container
//	    panic(err)
//	}
//	if err := fs.Create("notes.txt"); err != nil {
//	    panic(err)
//	}
//	if err := fs.Write("notes.txt", []byte("hello")); err != nil {
//	    panic(err)
//	}
//	data, err := fs.Read("notes.txt")
//
// # Container Format
//
//	[0, 4)                 little-endian uint32 length L of the entry map
//	[4, 4+L)               codec-encoded entry map (name -> descriptor)
//	[4+L, 4+L+blocks)      one byte per data block, 0 = free, 1 = occupied
//	[meta end, total)      data blocks, each exactly BlockSize bytes
//
// Every mutating operation rewrites the metadata region wholesale; data
// blocks are written and read individually at fixed offsets.
//
// # Concurrency
//
// An FS is single-threaded by contract: one engine instance per container,
// every operation runs to completion before returning. Concurrent
// processes operating on the same container file are undefined behavior;
// external mutual exclusion is the integrator's responsibility.
//
// # Durability
//
// Metadata persistence is read-modify-rewrite of the whole region. There
// is no journaling: a crash mid-write can corrupt the metadata region, in
// which case Load reports it as corrupt. Use Backup/Restore for recovery
// points.
package lightfs
