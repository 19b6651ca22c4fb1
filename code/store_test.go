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

package code

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestStoreInsertIsIdempotent(t *testing.T) {
	g := NewWithT(t)

	s := NewStore()
	a := s.Insert(NewNumber(42))
	b := s.Insert(NewNumber(42))

	g.Expect(a).To(Equal(b))
	g.Expect(s.Len()).To(Equal(1))
}

func TestStoreHashUniquenessAcrossSharedChildren(t *testing.T) {
	g := NewWithT(t)

	s := NewStore()

	leaf := s.Insert(NewNumber(1))
	tupleA := s.Insert(NewTuple([]Hash{leaf, leaf}))
	tupleB := s.Insert(NewTuple([]Hash{leaf, leaf}))

	g.Expect(tupleA).To(Equal(tupleB))
	g.Expect(s.Len()).To(Equal(2)) // the leaf, and the one tuple
}

func TestStoreDistinguishesDifferentKinds(t *testing.T) {
	g := NewWithT(t)

	s := NewStore()
	number := s.Insert(NewNumber(0))
	empty := s.Insert(NewEmpty())

	g.Expect(number).NotTo(Equal(empty))
}

func TestStoreGetForeverReturnsWhatWasInserted(t *testing.T) {
	g := NewWithT(t)

	s := NewStore()
	h := s.Insert(NewIdentifier("foo"))

	for i := 0; i < 3; i++ {
		g.Expect(s.Get(h)).To(Equal(NewIdentifier("foo")))
	}
}

func TestStoreGetUnknownHashPanics(t *testing.T) {
	g := NewWithT(t)

	s := NewStore()
	g.Expect(func() { s.Get(Hash{}) }).To(Panic())
}
