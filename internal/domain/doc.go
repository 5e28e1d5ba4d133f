// Package domain contains the core model for the FragmentFusion project tooling:
// samples, archive metadata, download summaries, QC checks and project config.
//
// The domain does not depend on YAML parsing, net/http, exec or the filesystem.
// Infra adapters map into/from these types.
package domain
