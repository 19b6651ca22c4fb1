// Copyright Crosscut Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package code implements the codebase: an append-only, content-addressed
// store of syntax nodes, the versioned paths that locate an instance of a
// node within the tree, and the change log that lets a path issued against
// an old snapshot still be resolved against the latest one.
package code

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the width of a node's content digest, in bytes.
const HashSize = 32

// Hash is the content digest of a syntax node, including the digests of all
// of its children, transitively. Two nodes with the same Hash are
// indistinguishable and share a single entry in the Store.
//
// A Hash says nothing about where in the tree a node occurs; for that, see
// Path.
type Hash [HashSize]byte

// String renders the hash as a hex string, for logging and debugging.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero value, which never identifies an
// actual node (every real hash is the blake2b-256 digest of at least a kind
// tag byte).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// hashBytes computes the canonical digest of an already-encoded node. The
// encoding is produced by Node.canonicalBytes, which is the only function
// that needs to agree with this one on format.
func hashBytes(encoded []byte) Hash {
	return blake2b.Sum256(encoded)
}
