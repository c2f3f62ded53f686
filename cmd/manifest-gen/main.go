// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command manifest-gen generates and verifies the expected-hash
// manifest consumed by openbc-handshaked, and exposes the two
// fingerprint functions directly for ad-hoc use.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openbc-project/handshaked/internal/checksum"
)

// checksumRound mirrors the four mandatory rounds' directory/filter
// pairs so "generate" and "verify" walk the same trees the live
// handshake will.
type checksumRound struct {
	dir       string
	filter    string
	recursive bool
}

var rounds = []checksumRound{
	{dir: "scripts", filter: "App.pyc", recursive: false},
	{dir: "scripts", filter: "Autoexec.pyc", recursive: false},
	{dir: "scripts/ships", filter: "*.pyc", recursive: true},
	{dir: "scripts/mainmenu", filter: "*.pyc", recursive: false},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "generate":
		err = cmdGenerate(os.Args[2:])
	case "verify":
		err = cmdVerify(os.Args[2:])
	case "hash-string":
		err = cmdHashString(os.Args[2:])
	case "hash-file":
		err = cmdHashFile(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "manifest-gen:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: manifest-gen <generate|verify|hash-string|hash-file> [args...]")
}

// docFile, docSubdir and docDirectory mirror the on-disk manifest
// shape internal/manifest.Load parses: hashes only, "0x"-prefixed, no
// plaintext name ever written to the document itself.
type docFile struct {
	NameHash    string `json:"name_hash"`
	ContentHash string `json:"content_hash"`
}

type docSubdir struct {
	NameHash string    `json:"name_hash"`
	Files    []docFile `json:"files"`
}

type docDirectory struct {
	DirNameHash string      `json:"dir_name_hash"`
	Recursive   bool        `json:"recursive"`
	Files       []docFile   `json:"files"`
	Subdirs     []docSubdir `json:"subdirs,omitempty"`
}

type document struct {
	VersionStringHash string         `json:"version_string_hash"`
	Directories       []docDirectory `json:"directories"`
}

// cmdGenerate walks root/<round.dir> for each round and writes a
// manifest document covering every matching file to outPath.
func cmdGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	root := fs.String("root", ".", "root directory the round directories are relative to")
	out := fs.String("out", "manifest.json", "output path for the generated manifest")
	versionHash := fs.String("version-hash", "00000000", "8-digit hex version hash to embed in the manifest")
	if err := fs.Parse(args); err != nil {
		return err
	}

	versionHashValue, err := parseVersionHash(*versionHash)
	if err != nil {
		return err
	}

	doc := document{VersionStringHash: hex32(versionHashValue)}
	for _, round := range rounds {
		dirName := round.dir + "/"
		dirPath := filepath.Join(*root, filepath.FromSlash(round.dir))
		dd := docDirectory{DirNameHash: hex32(checksum.NameHash(dirName)), Recursive: round.recursive}

		entries, err := hashDirectoryFiles(dirPath, round.filter)
		if err != nil {
			return fmt.Errorf("round %q: %w", round.dir, err)
		}
		dd.Files = entries

		if round.recursive {
			subdirs, err := os.ReadDir(dirPath)
			if err != nil {
				return fmt.Errorf("round %q: listing subdirectories: %w", round.dir, err)
			}
			for _, sub := range subdirs {
				if !sub.IsDir() {
					continue
				}
				subFiles, err := hashDirectoryFiles(filepath.Join(dirPath, sub.Name()), round.filter)
				if err != nil {
					return fmt.Errorf("round %q: subdir %q: %w", round.dir, sub.Name(), err)
				}
				dd.Subdirs = append(dd.Subdirs, docSubdir{NameHash: hex32(checksum.NameHash(sub.Name())), Files: subFiles})
			}
		}

		doc.Directories = append(doc.Directories, dd)
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "\t")
	return enc.Encode(doc)
}

func hashDirectoryFiles(dir, filter string) ([]docFile, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []docFile
	for _, e := range entries {
		if e.IsDir() || !matchFilter(e.Name(), filter) {
			continue
		}
		hash, ok := checksum.ContentHashFile(filepath.Join(dir, e.Name()))
		if !ok {
			return nil, fmt.Errorf("reading %s", filepath.Join(dir, e.Name()))
		}
		files = append(files, docFile{
			NameHash:    hex32(checksum.NameHash(e.Name())),
			ContentHash: hex32(hash),
		})
	}
	return files, nil
}

// parseVersionHash accepts either an "0x"-prefixed or bare 8-digit hex
// string, since -version-hash is an operator-facing flag and both
// spellings are natural to type.
func parseVersionHash(s string) (uint32, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return 0, fmt.Errorf("invalid -version-hash %q: %w", s, err)
	}
	if len(raw) != 4 {
		return 0, fmt.Errorf("-version-hash %q must encode exactly 4 bytes, got %d", s, len(raw))
	}
	return uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3]), nil
}

// matchFilter implements the two filter shapes the handshake rounds
// use: an exact filename, or a "*.ext" suffix wildcard.
func matchFilter(name, filter string) bool {
	if strings.HasPrefix(filter, "*") {
		return strings.HasSuffix(name, strings.TrimPrefix(filter, "*"))
	}
	return name == filter
}

// cmdVerify re-hashes root against an existing manifest and reports any
// mismatch, exiting 0 on a full match and 1 otherwise. The manifest
// document carries only hashes, so verify re-derives the same
// directory/round association "generate" used (the fixed rounds table)
// rather than reading a path back out of the document.
func cmdVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	root := fs.String("root", ".", "root directory the round directories are relative to")
	manifestPath := fs.String("manifest", "manifest.json", "manifest file to verify against")
	if err := fs.Parse(args); err != nil {
		return err
	}

	raw, err := os.ReadFile(*manifestPath)
	if err != nil {
		return err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if len(doc.Directories) != len(rounds) {
		return fmt.Errorf("manifest has %d directories, expected %d", len(doc.Directories), len(rounds))
	}

	mismatches := 0
	for i, round := range rounds {
		dirPath := filepath.Join(*root, filepath.FromSlash(round.dir))
		mismatches += verifyDirectoryFiles(dirPath, round.filter, round.dir, doc.Directories[i].Files)

		if !round.recursive {
			continue
		}
		subdirs, err := os.ReadDir(dirPath)
		if err != nil {
			return fmt.Errorf("round %q: listing subdirectories: %w", round.dir, err)
		}
		for _, sub := range subdirs {
			if !sub.IsDir() {
				continue
			}
			subNameHash := hex32(checksum.NameHash(sub.Name()))
			sd, found := findSubdir(doc.Directories[i].Subdirs, subNameHash)
			if !found {
				continue // subdirectory on disk but not in the manifest; generate picks it up, verify doesn't flag it
			}
			mismatches += verifyDirectoryFiles(filepath.Join(dirPath, sub.Name()), round.filter, round.dir+"/"+sub.Name(), sd.Files)
		}
	}

	if mismatches > 0 {
		os.Exit(1)
	}
	fmt.Println("OK")
	return nil
}

func findSubdir(subdirs []docSubdir, nameHash string) (docSubdir, bool) {
	for _, s := range subdirs {
		if s.NameHash == nameHash {
			return s, true
		}
	}
	return docSubdir{}, false
}

// verifyDirectoryFiles re-hashes every file on disk under dir, matches
// each one against the manifest entry sharing its name hash, and prints
// a MISMATCH line (labelled with label, for operator readability) for
// every content mismatch or file the manifest doesn't account for.
func verifyDirectoryFiles(dir, filter, label string, manifestFiles []docFile) int {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		entries = nil
	} else if err != nil {
		fmt.Printf("MISMATCH %s: %s\n", label, err)
		return 1
	}

	mismatches := 0
	for _, e := range entries {
		if e.IsDir() || !matchFilter(e.Name(), filter) {
			continue
		}
		nameHash := hex32(checksum.NameHash(e.Name()))
		mf, found := findFile(manifestFiles, nameHash)
		if !found {
			fmt.Printf("MISMATCH %s/%s: not in manifest\n", label, e.Name())
			mismatches++
			continue
		}
		hash, ok := checksum.ContentHashFile(filepath.Join(dir, e.Name()))
		if !ok || hex32(hash) != mf.ContentHash {
			fmt.Printf("MISMATCH %s/%s\n", label, e.Name())
			mismatches++
		}
	}
	return mismatches
}

func findFile(files []docFile, nameHash string) (docFile, bool) {
	for _, f := range files {
		if f.NameHash == nameHash {
			return f, true
		}
	}
	return docFile{}, false
}

func cmdHashString(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("hash-string requires exactly one argument")
	}
	fmt.Println(hex32(checksum.NameHash(args[0])))
	return nil
}

func cmdHashFile(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("hash-file requires exactly one argument")
	}
	hash, ok := checksum.ContentHashFile(args[0])
	if !ok {
		return fmt.Errorf("reading %s", args[0])
	}
	fmt.Println(hex32(hash))
	return nil
}

func hex32(v uint32) string {
	b := []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	return "0x" + hex.EncodeToString(b)
}
