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

package render

import (
	"encoding/json"

	"github.com/n42blockchain/N42/internal/decompilation"
)

// projection is the JSON-facing shape of a decompilation.Result: field
// names are chosen for consumers outside this module, not for symmetry
// with the internal struct.
type projection struct {
	RunID        string           `json:"run_id"`
	Instructions []instructionDTO `json:"instructions"`
	Warnings     []string         `json:"warnings"`
	Statements   []statementDTO   `json:"statements"`
	Manifest     *manifestDTO     `json:"manifest,omitempty"`
}

type instructionDTO struct {
	Offset   int    `json:"offset"`
	Mnemonic string `json:"mnemonic"`
	Known    bool   `json:"known"`
	Operand  string `json:"operand,omitempty"`
}

type statementDTO struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

type manifestDTO struct {
	Name                string   `json:"name"`
	SupportedStandards  []string `json:"supported_standards"`
	Storage             bool     `json:"storage"`
	Payable             bool     `json:"payable"`
	PermissionWildcards int      `json:"permission_wildcards"`
	TrustsWildcard      bool     `json:"trusts_wildcard"`
}

// JSON renders result as the module's external JSON projection.
func JSON(result *decompilation.Result) ([]byte, error) {
	p := projection{
		RunID:    result.RunID.String(),
		Warnings: result.Warnings,
	}

	p.Instructions = make([]instructionDTO, len(result.Instructions))
	for i, inst := range result.Instructions {
		dto := instructionDTO{Offset: inst.Offset, Mnemonic: inst.Mnemonic(), Known: inst.Known}
		if inst.Operand != nil {
			dto.Operand = inst.Operand.String()
		}
		p.Instructions[i] = dto
	}

	p.Statements = make([]statementDTO, len(result.Statements))
	for i, s := range result.Statements {
		p.Statements[i] = statementDTO{Offset: s.Offset, Text: s.Text}
	}

	if result.ManifestSummary != nil {
		p.Manifest = &manifestDTO{
			Name:                result.ManifestSummary.Name,
			SupportedStandards:  result.ManifestSummary.SupportedStandards,
			Storage:             result.ManifestSummary.Storage,
			Payable:             result.ManifestSummary.Payable,
			PermissionWildcards: result.ManifestSummary.PermissionWildcards,
			TrustsWildcard:      result.ManifestSummary.TrustsWildcard,
		}
	}

	return json.MarshalIndent(p, "", "  ")
}
