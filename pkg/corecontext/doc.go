// Package corecontext replaces a process-wide settings array and static
// tonies-catalog cache with a context object threaded into every
// operation that needs shared, read-mostly state.
package corecontext
