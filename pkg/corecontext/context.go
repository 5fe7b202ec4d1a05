package corecontext

import "github.com/toniebox-reverse-engineering/teddy-cloud/pkg/content"

// Context bundles the settings map, the tonies catalog, and the content
// store into a single handle passed into every operation that needs
// them, replacing the process-wide settings array and static caches the
// source used.
type Context struct {
	Settings     *Settings
	Catalog      Catalog
	ContentStore *content.Store
}

// New builds a Context. catalog may be nil; callers that never need
// catalog metadata can omit it.
func New(settings *Settings, catalog Catalog, store *content.Store) *Context {
	return &Context{Settings: settings, Catalog: catalog, ContentStore: store}
}
