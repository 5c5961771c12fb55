// Package workspace contains concrete core.Workspace implementations. The
// storage contract itself lives in the core package; depend on core.Workspace
// in your code and pick an implementation (the filesystem DirStore or the
// test-friendly InMemoryStore) at wiring time.
package workspace
