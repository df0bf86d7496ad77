// Package sbr owns the ray-track filtering and annotation engine for
// shooting-and-bouncing-ray (SBR) simulation exports.
//
// Responsibilities: normalizing each track into a rooted bounce tree,
// computing per-node branch metrics bottom-up, and deciding top-down
// which bounces and escaping rays a renderer should draw under a given
// FilterConfig. Key types: RayBundle, RayTrack, RayBounceNode,
// FilterConfig.
//
// The engine mutates bundles in place and never performs tree surgery;
// filtering is purely additive annotation and may be re-applied with a
// different config. Decoding solver exports and rendering line segments
// are the callers' concern.
//
// No SQL/database code is allowed in this package; persistence lives in
// storage/sqlite.
package sbr
