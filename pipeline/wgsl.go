// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"crypto/sha256"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/gogpu/naga"
)

// translations is the number of WGSL modules whose SPIR-V is kept.
const translations = 64

// spirvMemo maps the SHA-256 of a WGSL source to its SPIR-V bytes, so
// rebuilding after a context loss does not translate again.
var spirvMemo = mustMemo(translations)

func mustMemo(size int) *lru.Cache {
	c, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return c
}

// spirv translates WGSL source to a SPIR-V module, memoized.
func spirv(source string) ([]byte, error) {
	key := sha256.Sum256([]byte(source))
	if v, ok := spirvMemo.Get(key); ok {
		return v.([]byte), nil
	}
	bin, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	spirvMemo.Add(key, bin)
	return bin, nil
}

// CompileWGSL translates WGSL source to SPIR-V words. SPIR-V is
// little-endian 32-bit words.
func CompileWGSL(source string) ([]uint32, error) {
	bin, err := spirv(source)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(bin)/4)
	for i := range words {
		words[i] = uint32(bin[i*4]) |
			uint32(bin[i*4+1])<<8 |
			uint32(bin[i*4+2])<<16 |
			uint32(bin[i*4+3])<<24
	}
	return words, nil
}

// TranslationsCached returns how many WGSL translations are memoized.
func TranslationsCached() int { return spirvMemo.Len() }
