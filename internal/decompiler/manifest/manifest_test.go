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

package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
  "name": "Sample Token",
  "supportedstandards": ["NEP-17"],
  "features": {"storage": true, "payable": false},
  "groups": [{"pubkey": "02abcd", "signature": "ef01"}],
  "permissions": [{"contract": "*", "methods": "*"}],
  "trusts": "*",
  "extra": {"Author": "test"},
  "abi": {
    "methods": [
      {"name": "balanceOf", "parameters": [{"name": "account", "type": "Hash160"}], "returntype": "Integer", "offset": 0, "safe": true},
      {"name": "1bad-name", "parameters": [], "returntype": "Void", "offset": 10, "safe": false}
    ],
    "events": [
      {"name": "Transfer", "parameters": [{"name": "from", "type": "Hash160"}]}
    ]
  }
}`

func TestParseSanitizesIdentifiers(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)
	require.Equal(t, "Sample Token", m.Name)
	require.True(t, m.Storage)
	require.False(t, m.Payable)
	require.True(t, m.TrustsWildcard)
	require.Len(t, m.Methods, 2)
	require.Equal(t, "balanceOf", m.Methods[0].Name)
	require.Equal(t, "account", m.Methods[0].Parameters[0].Name)
	require.Equal(t, "_1bad_name", m.Methods[1].Name)
	require.Len(t, m.Events, 1)
	require.Equal(t, "Transfer", m.Events[0].Name)
}

func TestParsePermissionWildcard(t *testing.T) {
	m, err := Parse([]byte(`{"permissions": [{"contract": "0x1234", "methods": ["foo", "*"]}]}`))
	require.NoError(t, err)
	require.Len(t, m.Permissions, 1)
	require.True(t, m.Permissions[0].Wildcard)
	require.Equal(t, []string{"foo"}, m.Permissions[0].Methods)
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`not json`))
	require.Error(t, err)
}
