// Command paramgen generates a single-party ("dev") trusted-setup
// parameter file for the accumulator: the trapdoor is sampled, used to
// derive the public powers, and then discarded — nothing secret is
// written out. This is NOT a substitute for a multi-party ceremony; it
// exists so the demo has something to load.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/kazmiller0/acc-tree/config"
	"github.com/kazmiller0/acc-tree/pkg/accumulator"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "dev" {
		printUsage()
		os.Exit(1)
	}
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}
	outPath := os.Args[2]

	q := uint64(config.DefaultQ)
	if len(os.Args) >= 4 {
		parsed, err := strconv.ParseUint(os.Args[3], 10, 64)
		if err != nil {
			log.Fatalf("invalid Q %q: %v", os.Args[3], err)
		}
		q = parsed
	}

	cfg := config.Params{Curve: config.CurveBLS12381, Q: q, Version: config.ParamFileVersion}
	params, _, err := accumulator.DevSetup(cfg)
	if err != nil {
		log.Fatalf("dev setup: %v", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("create %s: %v", outPath, err)
	}
	defer f.Close()

	if err := accumulator.ExportParams(f, params); err != nil {
		log.Fatalf("export params: %v", err)
	}
	fmt.Printf("wrote %s (curve=%s Q=%d version=%s)\n", outPath, params.Curve, params.Q, params.Version)
}

func printUsage() {
	fmt.Println(`Usage:
  go run ./cmd/paramgen dev OUT_FILE [Q]   Single-party dev setup (NOT for production)

Q defaults to the configured DefaultQ if omitted.`)
}
