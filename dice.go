// dice.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements discovery and parsing of dice configuration
// files. A .dice file holds one or more named configurations in a
// block format: the first line of a block is the configuration name,
// the following lines list dice as whitespace-separated strings of
// face labels, and a blank line terminates the block.

package boggle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiceRegistry holds the dice configurations discovered at startup
type DiceRegistry struct {
	names   []string
	configs map[string]DiceConfig
}

// NewDiceRegistry builds a registry from explicit configurations.
// Used by tests; production registries come from LoadDiceConfigs.
func NewDiceRegistry(configs map[string]DiceConfig) *DiceRegistry {
	reg := &DiceRegistry{configs: configs}
	for name := range configs {
		reg.names = append(reg.names, name)
	}
	sort.Strings(reg.names)
	return reg
}

// LoadDiceConfigs reads every *.dice file in dir into a registry
func LoadDiceConfigs(dir string) (*DiceRegistry, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.dice"))
	if err != nil {
		return nil, err
	}
	configs := make(map[string]DiceConfig)
	for _, fname := range files {
		f, err := os.Open(fname)
		if err != nil {
			return nil, fmt.Errorf("dice config %s: %w", fname, err)
		}
		parsed, err := ParseDiceConfigs(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("dice config %s: %w", fname, err)
		}
		for name, dice := range parsed {
			configs[name] = dice
		}
	}
	return NewDiceRegistry(configs), nil
}

// ParseDiceConfigs parses the block file format
func ParseDiceConfigs(r io.Reader) (map[string]DiceConfig, error) {
	configs := make(map[string]DiceConfig)
	var name string
	var dice DiceConfig
	inBlock := false

	flush := func() {
		if len(dice) > 0 {
			configs[name] = dice
		}
		name, dice, inBlock = "", nil, false
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		if !inBlock {
			name = line
			inBlock = true
			continue
		}
		dice = append(dice, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return configs, nil
}

// Get looks up a configuration by name
func (reg *DiceRegistry) Get(name string) (DiceConfig, bool) {
	dice, ok := reg.configs[name]
	return dice, ok
}

// Names lists the available configuration names, sorted
func (reg *DiceRegistry) Names() []string {
	return reg.names
}
