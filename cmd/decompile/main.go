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

// Command decompile is a thin CLI wrapping internal/decompilation: read a
// .nef script (plus optional manifest sidecar), run the analysis core, and
// project the result through one of the render package's formats.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/n42blockchain/N42/internal/decompilation"
	"github.com/n42blockchain/N42/internal/decompilation/render"
	"github.com/n42blockchain/N42/internal/decompilation/render/dotgraph"
	"github.com/n42blockchain/N42/internal/decompiler/csharp"
	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/highlevel/postprocess"
)

func main() {
	app := &cli.App{
		Name:      "decompile",
		Usage:     "decompile a Neo N3 contract script (NEF3) into pseudocode, a C# skeleton, or a graph export",
		UsageText: "decompile --script contract.nef [--manifest contract.manifest.json] [--format raw|json|csharp|dot-cfg|dot-callgraph]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "script",
				Usage:    "path to the .nef container",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "path to the contract's manifest.json sidecar",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format: raw, json, csharp, dot-cfg, dot-callgraph",
				Value: "raw",
			},
			&cli.BoolFlag{
				Name:  "permit-unknown-opcodes",
				Usage: "tolerate unrecognized opcode bytes instead of failing disassembly",
			},
			&cli.BoolFlag{
				Name:  "inline-single-use-temps",
				Usage: "fold single-use temporaries into their one use site",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "output file (defaults to stdout)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "decompile:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	scriptBytes, err := os.ReadFile(c.String("script"))
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	opts := decompilation.Options{
		Postprocess: postprocessOptions(c),
	}
	if c.Bool("permit-unknown-opcodes") {
		opts.UnknownHandling = disasm.Permit
	}
	if path := c.String("manifest"); path != "" {
		manifestBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading manifest: %w", err)
		}
		opts.ManifestJSON = manifestBytes
	}

	result, err := decompilation.Decompile(scriptBytes, opts)
	if err != nil {
		return fmt.Errorf("decompiling: %w", err)
	}

	output, err := project(c.String("format"), result)
	if err != nil {
		return err
	}

	if path := c.String("out"); path != "" {
		return os.WriteFile(path, []byte(output), 0o644)
	}
	fmt.Println(output)
	return nil
}

func postprocessOptions(c *cli.Context) postprocess.Options {
	return postprocess.Options{InlineSingleUseTemps: c.Bool("inline-single-use-temps")}
}

func project(format string, result *decompilation.Result) (string, error) {
	switch format {
	case "raw":
		return render.Raw(result.Instructions), nil
	case "json":
		b, err := render.JSON(result)
		if err != nil {
			return "", fmt.Errorf("rendering json: %w", err)
		}
		return string(b), nil
	case "csharp":
		if result.CSharp == nil {
			return "", fmt.Errorf("no manifest was supplied; csharp output requires one")
		}
		return csharp.Render(result.CSharp, "ContractSkeleton"), nil
	case "dot-cfg":
		return dotgraph.CFG(result.Cfg), nil
	case "dot-callgraph":
		return dotgraph.CallGraph(result.CallEdges), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}
