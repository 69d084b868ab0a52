// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the shared data types for the gen2 chat client:
// messages, roles, grounding citations, session summaries, and transcripts.
//
// The types here are deliberately plain values with JSON tags. Persistence
// envelopes (versioning, key layout) live in the storage package; provider
// wire formats live in the provider package. Both convert to and from these
// types at their boundaries so the rest of the application only ever sees
// model values.
package model
