// Package mmap provides read-only memory-mapped file access.
//
// The local blob store maps committed block files instead of reading them
// through a file handle:
//
//	m, err := mmap.Open(path)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	_ = m.Advise(mmap.AccessRandom)
//
// Unix uses mmap(2) and madvise(2); Windows uses MapViewOfFile and ignores
// access hints. Bytes must not be touched after Close.
package mmap
