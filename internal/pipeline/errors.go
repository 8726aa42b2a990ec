package pipeline

import "fmt"

// FetchError means a whole feed could not be retrieved or parsed. The feed
// is skipped for the cycle; its siblings are unaffected.
type FetchError struct {
	FeedURL string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for %s: %v", e.FeedURL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ResourceError means a binary resource could not be obtained or decoded.
// TenantWide resources (logo, fonts) abort the rest of the tenant's cycle,
// since every remaining item would fail the same way; per-item resources
// (the photo) only skip their item.
type ResourceError struct {
	Resource   string
	TenantWide bool
	Err        error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// RenderError means compositing failed for one item. The item is not
// committed and stays eligible for the next cycle.
type RenderError struct {
	Link string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed for %s: %v", e.Link, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// PublishError means the transport rejected the artifact before anything was
// hosted. The item is not committed and retried next cycle.
type PublishError struct {
	Link string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed for %s: %v", e.Link, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// LedgerError means the dedup ledger is unavailable. It is fatal for the
// whole cycle: without a durable ledger nothing may be marked processed, or
// a restart would double-post.
type LedgerError struct {
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger unavailable: %v", e.Err)
}

func (e *LedgerError) Unwrap() error { return e.Err }
