// Command ifcgeomc is the corepipe geometry compiler CLI.
//
// Usage:
//
//	ifcgeomc [options] <input>
//
// Examples:
//
//	ifcgeomc model.ifc                    # process and print a JSON summary
//	ifcgeomc -o summary.json model.ifc    # write the summary to a file
//	ifcgeomc -diagnostics model.ifc       # also print diagnostics to stderr
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"gopkg.in/yaml.v3"

	"github.com/ifcgeom/corepipe"
	"github.com/ifcgeom/corepipe/diag"
)

var (
	output      = flag.String("o", "", "output file (default: stdout)")
	diagnostics = flag.Bool("diagnostics", false, "print diagnostics to stderr")
	units       = flag.Bool("units", true, "include unit scale and schema metadata in the summary")
	configPath  = flag.String("config", "", "optional YAML file overriding batch/depth tuning")
	versionFlag = flag.Bool("version", false, "print version")
)

// version returns the module version from build info.
func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

// tuningOverride is the subset of corepipe.Config a YAML file may override,
// grounded on the teacher's flat CompileOptions-style config shape.
type tuningOverride struct {
	InitialBatchSize *int     `yaml:"initial_batch_size"`
	MaxBatchSize     *int     `yaml:"max_batch_size"`
	PipelineDepth    *int     `yaml:"pipeline_depth"`
	RTCThresholdM    *float64 `yaml:"rtc_threshold_m"`
}

func loadConfig(path string) (corepipe.Config, error) {
	cfg := corepipe.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	var override tuningOverride
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if override.InitialBatchSize != nil {
		cfg.InitialBatchSize = *override.InitialBatchSize
	}
	if override.MaxBatchSize != nil {
		cfg.MaxBatchSize = *override.MaxBatchSize
	}
	if override.PipelineDepth != nil {
		cfg.PipelineDepth = *override.PipelineDepth
	}
	if override.RTCThresholdM != nil {
		cfg.RTCThresholdM = *override.RTCThresholdM
	}
	return cfg, nil
}

// jsonSummary is the stable, serializable shape written to stdout/-o; it
// mirrors corepipe.Summary but omits per-vertex mesh buffers
// (a full summary is a debug dump, not a first-class output format — see
// spec.md's Non-goals on persisted serialization formats), reporting mesh
// counts and the per-element metadata a caller needs to decide what to
// fetch next.
type jsonSummary struct {
	Meshes   []meshSummary  `json:"meshes"`
	Stats    map[string]any `json:"stats"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type meshSummary struct {
	ElementID     int64  `json:"elementId"`
	TypeTag       string `json:"typeTag"`
	VertexCount   int    `json:"vertexCount"`
	TriangleCount int    `json:"triangleCount"`
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("ifcgeomc version %s\n", version())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}
	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	summary, err := corepipe.ProcessFile(context.Background(), source, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Processing error: %v\n", err)
		os.Exit(1)
	}

	out := jsonSummary{
		Stats: map[string]any{
			"totalMeshes":    summary.Stats.TotalMeshes,
			"totalVertices":  summary.Stats.TotalVertices,
			"totalTriangles": summary.Stats.TotalTriangles,
			"parseTimeMs":    summary.Stats.ParseTimeMS,
			"geometryTimeMs": summary.Stats.GeometryTimeMS,
			"totalTimeMs":    summary.Stats.TotalTimeMS,
		},
	}
	if *units {
		out.Metadata = map[string]any{
			"schemaVersion":       summary.Metadata.SchemaVersion,
			"entityCount":         summary.Metadata.EntityCount,
			"geometryEntityCount": summary.Metadata.GeometryEntityCount,
			"unitScale":           summary.Metadata.UnitScale,
			"rtcActive":           summary.Metadata.RTCActive,
		}
	}
	for _, m := range summary.Meshes {
		out.Meshes = append(out.Meshes, meshSummary{
			ElementID:     m.ElementID,
			TypeTag:       m.TypeTag,
			VertexCount:   len(m.Positions) / 3,
			TriangleCount: len(m.Indices) / 3,
		})
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding summary: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, encoded, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully processed %s to %s (%d meshes)\n", inputPath, *output, len(out.Meshes))
	} else {
		fmt.Println(string(encoded))
	}

	if *diagnostics {
		printDiagnostics(summary.Diagnostics)
	}
}

// printDiagnostics is the thin stderr adapter spec.md's "no I/O in the
// core" rule calls for: the diag package never writes anywhere itself, so
// this is the one place a Snapshot's contents actually reach a stream.
func printDiagnostics(snap diag.Snapshot) {
	for phase, counts := range snap.CountsByPhase {
		fmt.Fprintf(os.Stderr, "%s: %d info, %d warning, %d error\n", phase, counts.Info, counts.Warning, counts.Error)
	}
	if snap.DroppedCount > 0 {
		fmt.Fprintf(os.Stderr, "(%d older diagnostic messages dropped)\n", snap.DroppedCount)
	}
	for _, msg := range snap.Messages {
		fmt.Fprintln(os.Stderr, msg.Error())
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: ifcgeomc [options] <input.ifc>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  ifcgeomc model.ifc                  Print a JSON summary to stdout\n")
	fmt.Fprintf(os.Stderr, "  ifcgeomc -o summary.json model.ifc  Write the summary to a file\n")
	fmt.Fprintf(os.Stderr, "  ifcgeomc -diagnostics model.ifc     Also print diagnostics to stderr\n")
}
