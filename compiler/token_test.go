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

package compiler

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/hannobraun/crosscut/code"
	"github.com/hannobraun/crosscut/packages"
)

func TestResolveTokenEmpty(t *testing.T) {
	g := NewWithT(t)

	node, err := ResolveToken("", nil, packages.New())
	g.Expect(err).To(BeNil())
	g.Expect(node.Kind).To(Equal(code.KindEmpty))
}

func TestResolveTokenEmptyWithChildrenIsTooManyChildren(t *testing.T) {
	g := NewWithT(t)

	s := code.NewStore()
	child := s.Insert(code.NewNumber(1))

	node, err := ResolveToken("", []code.Hash{child}, packages.New())
	g.Expect(node.Kind).To(Equal(code.KindError))
	g.Expect(err).NotTo(BeNil())
	g.Expect(err.Kind).To(Equal(code.TooManyChildren))
}

func TestResolveTokenSelf(t *testing.T) {
	g := NewWithT(t)

	node, err := ResolveToken("self", nil, packages.New())
	g.Expect(err).To(BeNil())
	g.Expect(node.Kind).To(Equal(code.KindRecursion))
}

func TestResolveTokenFnRequiresExactlyTwoChildren(t *testing.T) {
	g := NewWithT(t)

	s := code.NewStore()
	a := s.Insert(code.NewBinding("x"))
	b := s.Insert(code.NewEmpty())

	node, err := ResolveToken("fn", []code.Hash{a, b}, packages.New())
	g.Expect(err).To(BeNil())
	g.Expect(node.Kind).To(Equal(code.KindFunction))

	_, err = ResolveToken("fn", []code.Hash{a}, packages.New())
	g.Expect(err.Kind).To(Equal(code.TooFewChildren))

	_, err = ResolveToken("fn", []code.Hash{a, b, b}, packages.New())
	g.Expect(err.Kind).To(Equal(code.TooManyChildren))
}

func TestResolveTokenTupleAcceptsAnyArity(t *testing.T) {
	g := NewWithT(t)

	s := code.NewStore()
	a := s.Insert(code.NewNumber(1))
	b := s.Insert(code.NewNumber(2))

	node, err := ResolveToken("tuple", nil, packages.New())
	g.Expect(err).To(BeNil())
	g.Expect(node.Kind).To(Equal(code.KindTuple))
	g.Expect(node.Children).To(BeEmpty())

	node, err = ResolveToken("tuple", []code.Hash{a, b}, packages.New())
	g.Expect(err).To(BeNil())
	g.Expect(node.Children).To(Equal([]code.Hash{a, b}))
}

func TestResolveTokenInteger(t *testing.T) {
	g := NewWithT(t)

	node, err := ResolveToken("42", nil, packages.New())
	g.Expect(err).To(BeNil())
	g.Expect(node.Kind).To(Equal(code.KindNumber))
	g.Expect(node.Value).To(Equal(int32(42)))
}

func TestResolveTokenProvidedFunction(t *testing.T) {
	g := NewWithT(t)

	pkgs := packages.New()
	id, err := pkgs.Register("print")
	g.Expect(err).To(BeNil())

	node, codeErr := ResolveToken("print", nil, pkgs)
	g.Expect(codeErr).To(BeNil())
	g.Expect(node.Kind).To(Equal(code.KindProvidedFunction))
	g.Expect(node.FunctionID).To(Equal(id))
}

func TestResolveTokenUnresolvedHasNoCandidates(t *testing.T) {
	g := NewWithT(t)

	node, err := ResolveToken("frobnicate", nil, packages.New())
	g.Expect(node.Kind).To(Equal(code.KindError))
	g.Expect(err.Kind).To(Equal(code.UnresolvedIdentifier))
	g.Expect(err.Candidates).To(BeEmpty())
}

func TestResolveTokenAmbiguousBetweenLiteralAndProvidedFunction(t *testing.T) {
	g := NewWithT(t)

	pkgs := packages.New()
	_, err := pkgs.Register("tuple")
	g.Expect(err).To(BeNil())

	node, codeErr := ResolveToken("tuple", nil, pkgs)
	g.Expect(node.Kind).To(Equal(code.KindError))
	g.Expect(codeErr.Kind).To(Equal(code.UnresolvedIdentifier))
	g.Expect(codeErr.Candidates).To(HaveLen(2))
}
