// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

// Package manifest decodes the JSON contract manifest's ABI surface: only
// the fields the analysis core actually consumes (§6), with names
// sanitized to a safe identifier alphabet before they reach the
// high-level lifter or the C# skeleton emitter. This is a thin
// collaborator, not part of the synchronous analysis core: it is the
// only analysis-side package that touches encoding/json (the JSON
// renderer is the other user).
package manifest

import (
	"encoding/json"
	"strings"

	"github.com/n42blockchain/N42/internal/decompiler/decompileerr"
)

// Parameter is one ABI method or event parameter.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Method is one abi.methods[*] entry. Name is sanitized; OriginalName
// preserves the manifest's own spelling so collaborators (the C# skeleton
// emitter) can tell when a [DisplayName] attribute is required. HasOffset
// distinguishes a declared offset of 0 from a method the manifest never
// bound to a script entry point at all.
type Method struct {
	Name         string
	OriginalName string
	Parameters   []Parameter
	ReturnType   string
	Offset       int
	HasOffset    bool
	Safe         bool
}

// Event is one abi.events[*] entry.
type Event struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
}

type rawMethod struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
	ReturnType string      `json:"returntype"`
	Offset     *int        `json:"offset"`
	Safe       bool        `json:"safe"`
}

type abi struct {
	Methods []rawMethod `json:"methods"`
	Events  []Event     `json:"events"`
}

type group struct {
	PubKey    string `json:"pubkey"`
	Signature string `json:"signature"`
}

type permission struct {
	Contract string          `json:"contract"`
	Methods  json.RawMessage `json:"methods"`
}

type features struct {
	Storage bool `json:"storage"`
	Payable bool `json:"payable"`
}

// rawManifest mirrors the on-disk JSON shape before sanitization.
type rawManifest struct {
	Name               string          `json:"name"`
	SupportedStandards []string        `json:"supportedstandards"`
	Features           features        `json:"features"`
	Groups             []group         `json:"groups"`
	Permissions        []permission    `json:"permissions"`
	Trusts             json.RawMessage `json:"trusts"`
	Extra              json.RawMessage `json:"extra"`
	Abi                abi             `json:"abi"`
}

// Manifest is the sanitized surface consumed by the core.
type Manifest struct {
	Name               string
	SupportedStandards []string
	Storage            bool
	Payable            bool
	Groups             []Group
	Permissions        []Permission
	TrustsWildcard     bool
	Trusts             []string
	Extra              json.RawMessage
	Methods            []Method
	Events             []Event
}

// Group is a sanitized manifest signer group.
type Group struct {
	PubKey    string
	Signature string
}

// Permission is a sanitized manifest permission entry.
type Permission struct {
	Contract string
	Methods  []string
	Wildcard bool
}

// Parse decodes raw manifest JSON into a Manifest, sanitizing method,
// event, and parameter names to a safe identifier alphabet.
func Parse(data []byte) (*Manifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, decompileerr.Wrap(err, "manifest: parse")
	}

	m := &Manifest{
		Name:               raw.Name,
		SupportedStandards: raw.SupportedStandards,
		Storage:            raw.Features.Storage,
		Payable:            raw.Features.Payable,
		Extra:              raw.Extra,
	}

	for _, g := range raw.Groups {
		m.Groups = append(m.Groups, Group{PubKey: g.PubKey, Signature: g.Signature})
	}

	for _, p := range raw.Permissions {
		perm := Permission{Contract: p.Contract}
		var wildcard string
		if err := json.Unmarshal(p.Methods, &wildcard); err == nil && wildcard == "*" {
			perm.Wildcard = true
		} else {
			var list []string
			if err := json.Unmarshal(p.Methods, &list); err == nil {
				for _, meth := range list {
					if meth == "*" {
						perm.Wildcard = true
						continue
					}
					perm.Methods = append(perm.Methods, meth)
				}
			}
		}
		m.Permissions = append(m.Permissions, perm)
	}

	if len(raw.Trusts) > 0 {
		var wildcard string
		if err := json.Unmarshal(raw.Trusts, &wildcard); err == nil && wildcard == "*" {
			m.TrustsWildcard = true
		} else {
			var list []string
			if err := json.Unmarshal(raw.Trusts, &list); err == nil {
				m.Trusts = list
			}
		}
	}

	for _, meth := range raw.Abi.Methods {
		offset := 0
		if meth.Offset != nil {
			offset = *meth.Offset
		}
		m.Methods = append(m.Methods, Method{
			Name:         sanitizeIdentifier(meth.Name),
			OriginalName: meth.Name,
			Parameters:   sanitizeParameters(meth.Parameters),
			ReturnType:   meth.ReturnType,
			Offset:       offset,
			HasOffset:    meth.Offset != nil,
			Safe:         meth.Safe,
		})
	}
	for _, ev := range raw.Abi.Events {
		m.Events = append(m.Events, Event{
			Name:       sanitizeIdentifier(ev.Name),
			Parameters: sanitizeParameters(ev.Parameters),
		})
	}

	return m, nil
}

func sanitizeParameters(params []Parameter) []Parameter {
	out := make([]Parameter, len(params))
	for i, p := range params {
		out[i] = Parameter{Name: sanitizeIdentifier(p.Name), Type: p.Type}
	}
	return out
}

// sanitizeIdentifier rewrites name to [A-Za-z_][A-Za-z0-9_]*, falling back
// to "_" for an otherwise-empty result and prefixing "_" when the first
// rune isn't a valid identifier start.
func sanitizeIdentifier(name string) string {
	var b strings.Builder
	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		switch {
		case isLetter:
			b.WriteRune(r)
		case isDigit:
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	return out
}
