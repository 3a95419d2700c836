// Package events defines the canonical keyboard and pointer events produced
// from raw hook notifications, their JSON encoding, and the normalizer that
// admits or rejects pointer notifications against the capture region.
package events
