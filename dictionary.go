// dictionary.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements dictionary discovery and loading. A dictionary
// is a file named <name>.dic with one word per line; words are
// normalised to display form on load. Parsed dictionaries are cached
// process-locally behind an LRU, so the scoring workers pay the file
// parse cost once per dictionary.

package boggle

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
)

const dictExtension = ".dic"

// ListDictionaries returns the names of the readable dictionaries in dir
func ListDictionaries(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+dictExtension))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, fname := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(fname), dictExtension))
	}
	sort.Strings(names)
	return names, nil
}

// LoadDictionary reads the named dictionary from dir
func LoadDictionary(dir, name string) (Dictionary, error) {
	fname := filepath.Join(dir, name+dictExtension)
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", name, err)
	}
	defer f.Close()

	dict := make(Dictionary)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			dict[CleanWord(word)] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", name, err)
	}
	return dict, nil
}

// DictionaryCache is a mutex-guarded LRU of parsed dictionaries
type DictionaryCache struct {
	mux sync.Mutex
	dir string
	lru *simplelru.LRU
}

// NewDictionaryCache prepares a cache over the given directory
func NewDictionaryCache(dir string, size int) *DictionaryCache {
	cache := &DictionaryCache{dir: dir}
	cache.lru, _ = simplelru.NewLRU(size, nil)
	return cache
}

// Dir returns the directory the cache reads from
func (c *DictionaryCache) Dir() string {
	return c.dir
}

// Get returns the named dictionary, loading and caching it on first use
func (c *DictionaryCache) Get(name string) (Dictionary, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if cached, ok := c.lru.Get(name); ok {
		return cached.(Dictionary), nil
	}
	dict, err := LoadDictionary(c.dir, name)
	if err != nil {
		return nil, err
	}
	c.lru.Add(name, dict)
	return dict, nil
}
