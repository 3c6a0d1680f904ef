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

package syscall

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupRuntimeLog(t *testing.T) {
	info, ok := Lookup(0x9647E7CF)
	require.True(t, ok)
	require.Equal(t, "System.Runtime.Log", info.Name)
	require.Equal(t, 1, info.ParamCount)
	require.False(t, info.ReturnsValue)
}

func TestLookupContractCall(t *testing.T) {
	info, ok := Lookup(0x525B7D62)
	require.True(t, ok)
	require.Equal(t, "System.Contract.Call", info.Name)
	require.Equal(t, 3, info.ParamCount)
	require.True(t, info.ReturnsValue)
}

func TestLookupUnknownDefaultsReturnsValue(t *testing.T) {
	info, ok := Lookup(0xDEADBEEF)
	require.False(t, ok)
	require.Equal(t, "", info.Name)
	require.Equal(t, 0, info.ParamCount)
	require.True(t, info.ReturnsValue)
}

func TestLookupIsRepeatable(t *testing.T) {
	first, _ := Lookup(0x616F0195)
	second, _ := Lookup(0x616F0195)
	require.Equal(t, first, second)
}
