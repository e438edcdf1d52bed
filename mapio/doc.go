// Package mapio provides the foundational interfaces and types for the
// map-package I/O abstraction.
//
// This package defines the contracts that I/O providers must implement,
// enabling map and campaign loading code to treat ZIP-packaged content
// identically to loose files on disk, without knowing whether a given
// logical path resolves to a real directory tree or an archive entry.
//
// # Design Philosophy
//
// The mapio package follows these principles:
//
//   - Zero dependencies: Only uses Go standard library
//   - Value-based failures: Operations report failure through return values
//     (bool, enum, nil stream), never through panics
//   - Narrow contracts: Providers implement exactly the surface that
//     content-loading code consumes
//
// # Contracts
//
//   - Provider: the filesystem-provider contract (open stream, load/write
//     whole files, existence checks, enumeration)
//   - BinaryStream: a generic binary read/write stream over one logical file
//   - SourceReadProvider: a caller-supplied byte source used to open
//     archives from arbitrary backing storage
//   - LoggingProtocol: an optional leveled log sink for backend diagnostics
//
// # Provider Implementations
//
// This package contains only interface definitions. Concrete implementations
// are provided by separate provider packages:
//
//   - github.com/Cleptomanis/warzone2100/mapio/zipio - ZIP-archive-backed provider
//   - github.com/Cleptomanis/warzone2100/mapio/stdio - plain-filesystem provider
package mapio
