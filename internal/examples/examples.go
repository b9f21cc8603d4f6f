// Package examples embeds the tutorial scripts shipped with ownsim.
package examples

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed scripts/*.own
var scripts embed.FS

// Script is one embedded tutorial script.
type Script struct {
	Name   string // file name without extension
	File   string // "scripts/<name>.own"
	Title  string // the first comment line without its name prefix
	Source []byte
}

// List returns every embedded script sorted by name, main first.
func List() []Script {
	entries, err := fs.ReadDir(scripts, "scripts")
	if err != nil {
		panic(fmt.Errorf("embedded scripts: %w", err))
	}
	out := make([]Script, 0, len(entries))
	for _, e := range entries {
		s, err := load(e.Name())
		if err != nil {
			panic(err)
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].Name == "main") != (out[j].Name == "main") {
			return out[i].Name == "main"
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Get returns the script called name.
func Get(name string) (Script, bool) {
	s, err := load(strings.TrimSuffix(name, ".own") + ".own")
	if err != nil {
		return Script{}, false
	}
	return s, true
}

func load(file string) (Script, error) {
	p := path.Join("scripts", file)
	src, err := scripts.ReadFile(p)
	if err != nil {
		return Script{}, err
	}
	name := strings.TrimSuffix(file, ".own")
	return Script{Name: name, File: p, Title: title(name, src), Source: src}, nil
}

func title(name string, src []byte) string {
	first, _, _ := strings.Cut(string(src), "\n")
	first = strings.TrimSpace(strings.TrimPrefix(first, "#"))
	return strings.TrimSpace(strings.TrimPrefix(first, name+":"))
}
