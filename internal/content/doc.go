// Package content defines the normalized units a creation session works with:
// the tagged-union Source, curated Blocks, the membership-only Selection, and
// the quotes and supplementary materials attached during configuration.
package content
