// Copyright (C) 2024 rzfs contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command rzfssum computes and verifies fletcher4/sha256 block
// checksums from the command line, either for a single file or for a
// batch of blocks described by a YAML manifest.
package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"

	"github.com/cybojanek/rzfs/fletcher4"
	"github.com/cybojanek/rzfs/sha256"
	"github.com/cybojanek/rzfs/zio"
)

var (
	dashAlgo   string
	dashImpl   string
	dashConfig string
	dashQuiet  bool
)

func init() {
	flag.StringVar(&dashAlgo, "algo", "fletcher4", "checksum algorithm: fletcher4 or sha256")
	flag.StringVar(&dashImpl, "impl", "auto", "kernel implementation override (see zfsimpl.Parse)")
	flag.StringVar(&dashConfig, "config", "", "path to a YAML manifest of blocks to batch-verify")
	flag.BoolVar(&dashQuiet, "q", false, "suppress the per-run run-id log line")
}

// manifest is the batch-verification input shape for -config: a list
// of blocks, each naming a data file on disk and the checksum it is
// expected to produce, expressed in hex.
type manifest struct {
	Blocks []manifestBlock `json:"blocks"`
}

type manifestBlock struct {
	Path             string `json:"path"`
	Algorithm        string `json:"algorithm"`
	Compressed       bool   `json:"compressed"`
	UncompressedSize int    `json:"uncompressedSize"`
	ExpectedHex      string `json:"expectedHex"`
}

func main() {
	flag.Parse()

	runID := uuid.New()
	if !dashQuiet {
		log.Printf("rzfssum run %s", runID)
	}

	var err error
	if dashConfig != "" {
		err = runManifest(dashConfig)
	} else {
		err = runSingle(flag.Args())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSingle(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rzfssum [-algo fletcher4|sha256] [-impl NAME] <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	digest, err := computeDigest(dashAlgo, dashImpl, data)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	fmt.Fprintf(w, "%s  %s  %s\n", hex.EncodeToString(digest), dashAlgo, args[0])
	return nil
}

func computeDigest(algo, impl string, data []byte) ([]byte, error) {
	switch algo {
	case "fletcher4":
		d, err := fletcher4.Sum(data, fletcher4.WithImplementation(impl))
		if isFatalDigestError(err) {
			return nil, fmt.Errorf("fletcher4: %w", err)
		}
		out := make([]byte, 32)
		for i, word := range []uint64{d.A, d.B, d.C, d.D} {
			for b := 0; b < 8; b++ {
				out[i*8+b] = byte(word >> uint(56-8*b))
			}
		}
		return out, nil
	case "sha256":
		d, err := sha256.Sum(data, sha256.WithImplementation(impl))
		if isFatalDigestError(err) {
			return nil, fmt.Errorf("sha256: %w", err)
		}
		return d[:], nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", algo)
	}
}

// isFatalDigestError distinguishes the non-fatal "requested
// implementation downgraded to scalar" diagnostic (still usable) from
// a genuine failure.
func isFatalDigestError(err error) bool {
	if err == nil {
		return false
	}
	var fe *fletcher4.UnsupportedImplementationError
	var se *sha256.UnsupportedImplementationError
	if errors.As(err, &fe) || errors.As(err, &se) {
		log.Printf("warning: %v", err)
		return false
	}
	return true
}

func runManifest(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	cache := zio.NewVerifyCache(len(m.Blocks))
	failures := 0
	for _, entry := range m.Blocks {
		if err := verifyManifestEntry(cache, entry); err != nil {
			log.Printf("FAIL %s: %v", entry.Path, err)
			failures++
			continue
		}
		log.Printf("OK   %s", entry.Path)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d blocks failed verification", failures, len(m.Blocks))
	}
	return nil
}

func verifyManifestEntry(cache *zio.VerifyCache, entry manifestBlock) error {
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return err
	}
	expected, err := hex.DecodeString(entry.ExpectedHex)
	if err != nil {
		return fmt.Errorf("invalid expectedHex: %w", err)
	}

	var algo zio.Algorithm
	switch entry.Algorithm {
	case "sha256":
		algo = zio.AlgorithmSHA256
	case "fletcher4", "":
		algo = zio.AlgorithmFletcher4
	default:
		return fmt.Errorf("unknown algorithm %q", entry.Algorithm)
	}

	b := &zio.Block{
		Data:             data,
		Compressed:       entry.Compressed,
		UncompressedSize: entry.UncompressedSize,
		Algorithm:        algo,
	}
	return cache.Verify(b, expected)
}
