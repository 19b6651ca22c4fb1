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
	"strconv"

	"github.com/hannobraun/crosscut/code"
	"github.com/hannobraun/crosscut/packages"
)

// literalForm is the set of token shapes that resolve independently of any
// package registry: the three keywords and an integer literal.
type literalForm struct {
	recognized bool
	node       code.Node
	arityErr   *code.CodeErrorKind
}

// resolveLiteral recognizes the "self"/"fn"/"tuple" keywords and integer
// literals, building the node each would produce against the given children
// and reporting the arity mismatch, if any. It does not look at the
// packages registry; ResolveToken combines this with a provided-function
// lookup to detect ambiguity between the two, per original_source's
// token.rs resolve_function.
func resolveLiteral(token string, children []code.Hash) (literalForm, bool) {
	switch token {
	case "self":
		if len(children) == 0 {
			return literalForm{recognized: true, node: code.NewRecursion()}, true
		}
		return errorLiteral(token, children, code.TooManyChildren), true

	case "fn":
		switch {
		case len(children) < 2:
			return errorLiteral(token, children, code.TooFewChildren), true
		case len(children) > 2:
			return errorLiteral(token, children, code.TooManyChildren), true
		default:
			return literalForm{recognized: true, node: code.NewFunction(children[0], children[1])}, true
		}

	case "tuple":
		return literalForm{recognized: true, node: code.NewTuple(children)}, true

	default:
		if n, err := strconv.ParseInt(token, 10, 32); err == nil {
			if len(children) == 0 {
				return literalForm{recognized: true, node: code.NewNumber(int32(n))}, true
			}
			return errorLiteral(token, children, code.TooManyChildren), true
		}
		return literalForm{}, false
	}
}

func errorLiteral(token string, children []code.Hash, kind code.CodeErrorKind) literalForm {
	k := kind
	return literalForm{recognized: true, node: code.NewError(token, children), arityErr: &k}
}

// ResolveToken implements §4.5's token resolution: the empty token becomes
// Empty, the reserved keywords and integer literals become their matching
// node, a name registered in pkgs becomes ProvidedFunction, and anything
// else becomes an Error{UnresolvedIdentifier}. A token that matches both a
// literal form and a provided-function name is itself treated as
// unresolved, carrying both as Candidates: the ambiguity is reported rather
// than broken by an arbitrary precedence rule.
func ResolveToken(token string, children []code.Hash, pkgs *packages.Packages) (code.Node, *code.CodeError) {
	if token == "" {
		if len(children) == 0 {
			return code.NewEmpty(), nil
		}
		kind := code.TooManyChildren
		return code.NewError(token, children), &code.CodeError{Kind: kind}
	}

	providedID, hasProvided := pkgs.Resolve(token)
	literal, hasLiteral := resolveLiteral(token, children)

	switch {
	case hasProvided && hasLiteral:
		return code.NewError(token, children), &code.CodeError{
			Kind: code.UnresolvedIdentifier,
			Candidates: []code.Candidate{
				{Kind: code.ProvidedFunctionCandidate, FunctionID: providedID},
				{Kind: code.LiteralCandidate, LiteralForm: token},
			},
		}

	case hasLiteral:
		if literal.arityErr != nil {
			return literal.node, &code.CodeError{Kind: *literal.arityErr}
		}
		return literal.node, nil

	case hasProvided:
		if len(children) == 0 {
			return code.NewProvidedFunction(providedID), nil
		}
		return code.NewError(token, children), &code.CodeError{Kind: code.TooManyChildren}

	default:
		return code.NewError(token, children), &code.CodeError{Kind: code.UnresolvedIdentifier}
	}
}

// tokenOf reconstructs the token string that would resolve back to n's kind,
// against a new child list. The ancestor-propagation step in Replace (and
// everything built on it) uses this to recompile a parent against its
// child's replacement without losing track of what the parent itself was.
// TokenOf is tokenOf exported for package editor, which needs to show the
// token string of whatever node the cursor currently sits on.
func TokenOf(n code.Node, pkgs *packages.Packages) string {
	return tokenOf(n, pkgs)
}

func tokenOf(n code.Node, pkgs *packages.Packages) string {
	switch n.Kind {
	case code.KindEmpty:
		return ""
	case code.KindRecursion:
		return "self"
	case code.KindFunction:
		return "fn"
	case code.KindTuple:
		return "tuple"
	case code.KindNumber:
		return strconv.FormatInt(int64(n.Value), 10)
	case code.KindProvidedFunction:
		name, _ := pkgs.Name(n.FunctionID)
		return name
	case code.KindIdentifier, code.KindBinding:
		return n.Name
	case code.KindError:
		return n.Token
	default:
		return ""
	}
}
