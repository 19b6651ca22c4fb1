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

func TestNewCodebaseRootIsEmpty(t *testing.T) {
	g := NewWithT(t)

	cb := NewCodebase()
	g.Expect(cb.Root().Node.Kind).To(Equal(KindEmpty))
}

func TestRootDerivationOnRemovalZeroChildren(t *testing.T) {
	g := NewWithT(t)

	cb := NewCodebase()
	root := cb.Root().Path

	MakeChange(cb, func(cs *NewChangeSet) struct{} {
		cs.Remove(root)
		return struct{}{}
	})

	g.Expect(cb.Root().Node.Kind).To(Equal(KindEmpty))
}

func TestRootDerivationOnRemovalSingleChild(t *testing.T) {
	g := NewWithT(t)

	cb := NewCodebase()

	childHash := cb.Nodes().Insert(NewNumber(7))
	oneChildHash := cb.Nodes().Insert(NewTuple([]Hash{childHash}))
	root := cb.Root().Path

	MakeChange(cb, func(cs *NewChangeSet) struct{} {
		cs.Replace(root, ForRoot(oneChildHash))
		return struct{}{}
	})
	root = cb.Root().Path

	MakeChange(cb, func(cs *NewChangeSet) struct{} {
		cs.Remove(root)
		return struct{}{}
	})

	g.Expect(cb.Root().Node.Kind).To(Equal(KindNumber))
	g.Expect(cb.Root().Node.Value).To(Equal(int32(7)))
}

func TestRootDerivationOnRemovalMultipleChildrenSynthesizesError(t *testing.T) {
	g := NewWithT(t)

	cb := NewCodebase()

	childA := cb.Nodes().Insert(NewNumber(1))
	childB := cb.Nodes().Insert(NewNumber(2))
	multiHash := cb.Nodes().Insert(NewTuple([]Hash{childA, childB}))
	root := cb.Root().Path

	MakeChange(cb, func(cs *NewChangeSet) struct{} {
		cs.Replace(root, ForRoot(multiHash))
		return struct{}{}
	})
	root = cb.Root().Path

	MakeChange(cb, func(cs *NewChangeSet) struct{} {
		cs.Remove(root)
		return struct{}{}
	})

	g.Expect(cb.Root().Node.Kind).To(Equal(KindError))
	g.Expect(cb.Root().Node.Token).To(Equal(""))
	g.Expect(cb.Root().Node.Children).To(Equal([]Hash{childA, childB}))
}

func TestMakeChangePanicsIfRootRemovedAndReplaced(t *testing.T) {
	g := NewWithT(t)

	cb := NewCodebase()
	root := cb.Root().Path
	other := cb.Nodes().Insert(NewNumber(1))

	g.Expect(func() {
		MakeChange(cb, func(cs *NewChangeSet) struct{} {
			cs.Remove(root)
			cs.Replace(root, ForRoot(other))
			return struct{}{}
		})
	}).To(Panic())
}

func TestMakeChangeWithErrorsRecordsAndCommits(t *testing.T) {
	g := NewWithT(t)

	cb := NewCodebase()
	root := cb.Root().Path
	h := cb.Nodes().Insert(NewNumber(1))

	MakeChangeWithErrors(cb, func(cs *NewChangeSet, errs *Errors) struct{} {
		newPath := ForRoot(h)
		cs.Replace(root, newPath)
		errs.Insert(newPath, CodeError{Kind: TooManyChildren})
		return struct{}{}
	})

	g.Expect(cb.ChangeCount()).To(Equal(1))
	g.Expect(cb.Errors().Len()).To(Equal(1))

	err, ok := cb.Errors().Get(cb.Root().Path)
	g.Expect(ok).To(BeTrue())
	g.Expect(err.Kind).To(Equal(TooManyChildren))
}
