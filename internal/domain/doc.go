// Package domain contains the core domain entities and value objects for noteship.
//
// This package represents the innermost layer of the application. It has no
// dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [Note]: An immutable text record (header, body, namespace)
//   - [TaggedNote]: A Note augmented with extracted header and body tags
//   - [Record]: The sized unit accepted by the batch accumulator
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
//
// The encoded size of a note is part of its domain contract: batch capacity
// decisions must be stable across runs, so sizing is defined over the
// serialized record rather than any in-memory representation.
package domain
