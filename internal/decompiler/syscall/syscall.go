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

// Package syscall is the static registry mapping a SYSCALL instruction's
// 32-bit interop hash to its name, parameter count, and return-value
// semantics. Hashes are the first 4 little-endian bytes of SHA-256(name),
// Neo N3's interop-service convention (see nspcc-dev/neo-go's
// pkg/core/interop/interopnames). Lookups are cached the way the teacher
// caches jump tables (internal/vm/jump_table_cache.go): the registry is
// immutable, so an LRU in front of it only pays off under pathological
// numbers of distinct hashes, but it keeps the lookup path identical to
// every other cached-immutable-table component in this codebase.
package syscall

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Info describes one interop service.
type Info struct {
	Hash          uint32
	Name          string
	ParamCount    int
	ReturnsValue  bool
}

var registry = []Info{
	{0x525B7D62, "System.Contract.Call", 3, true},
	{0x677BF71A, "System.Contract.CallNative", 1, false},
	{0x813ADA95, "System.Contract.GetCallFlags", 0, true},
	{0x028799CF, "System.Contract.CreateStandardAccount", 1, true},
	{0x09E9336A, "System.Contract.CreateMultisigAccount", 2, true},
	{0x93BCDB2E, "System.Contract.NativeOnPersist", 0, false},
	{0x165DA144, "System.Contract.NativePostPersist", 0, false},
	{0x9CED089C, "System.Iterator.Next", 1, true},
	{0x1DBF54F3, "System.Iterator.Value", 1, true},
	{0xF6FC79B2, "System.Runtime.Platform", 0, true},
	{0xE0A0FBC5, "System.Runtime.GetNetwork", 0, true},
	{0xDC92494C, "System.Runtime.GetAddressVersion", 0, true},
	{0xA0387DE9, "System.Runtime.GetTrigger", 0, true},
	{0x0388C3B7, "System.Runtime.GetTime", 0, true},
	{0x3008512D, "System.Runtime.GetScriptContainer", 0, true},
	{0x74A8FEDB, "System.Runtime.GetExecutingScriptHash", 0, true},
	{0x3C6E5339, "System.Runtime.GetCallingScriptHash", 0, true},
	{0x38E2B4F9, "System.Runtime.GetEntryScriptHash", 0, true},
	{0x8CEC27F8, "System.Runtime.CheckWitness", 1, true},
	{0x43112784, "System.Runtime.GetInvocationCounter", 0, true},
	{0x28A9DE6B, "System.Runtime.GetRandom", 0, true},
	{0x9647E7CF, "System.Runtime.Log", 1, false},
	{0x616F0195, "System.Runtime.Notify", 2, false},
	{0xF1354327, "System.Runtime.GetNotifications", 1, true},
	{0xCED88814, "System.Runtime.GasLeft", 0, true},
	{0xBC8C5AC3, "System.Runtime.BurnGas", 1, false},
	{0x8B18F1AC, "System.Runtime.CurrentSigners", 0, true},
	{0x27B3E756, "System.Crypto.CheckSig", 2, true},
	{0x3ADCD09E, "System.Crypto.CheckMultisig", 2, true},
	{0xCE67F69B, "System.Storage.GetContext", 0, true},
	{0xE26BB4F6, "System.Storage.GetReadOnlyContext", 0, true},
	{0xE9BF4C76, "System.Storage.AsReadOnly", 1, true},
	{0x31E85D92, "System.Storage.Get", 2, true},
	{0x9AB830DF, "System.Storage.Find", 3, true},
	{0x84183FE6, "System.Storage.Put", 3, false},
	{0xEDC5582F, "System.Storage.Delete", 2, false},
}

var byHash map[uint32]Info

func init() {
	byHash = make(map[uint32]Info, len(registry))
	for _, info := range registry {
		byHash[info.Hash] = info
	}
}

const cacheSize = 256

var cache, _ = lru.New[uint32, Info](cacheSize)

// unknownDefault is returned for hashes absent from the registry: "unknown
// hashes default to returns_value = true" per §4.7, and param_count = 0
// per §4.9.3.
func unknownDefault(hash uint32) Info {
	return Info{Hash: hash, Name: "", ParamCount: 0, ReturnsValue: true}
}

// Lookup resolves hash to its registered Info, or an unknown-default Info
// (empty Name, ReturnsValue true, ParamCount 0) if the hash is not in the
// registry. ok reports whether the hash was actually recognized.
func Lookup(hash uint32) (Info, bool) {
	if info, ok := cache.Get(hash); ok {
		return info, info.Name != ""
	}
	if info, ok := byHash[hash]; ok {
		cache.Add(hash, info)
		return info, true
	}
	info := unknownDefault(hash)
	cache.Add(hash, info)
	return info, false
}
