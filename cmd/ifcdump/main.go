// Command ifcdump inspects a STEP/IFC file's entity index without running
// any geometry: it prints every record's id, type tag, and byte range, and
// optionally a single entity's decoded attributes, for debugging malformed
// or unexpected input.
//
// Usage:
//
//	ifcdump <input>                 # list every entity
//	ifcdump -id 42 <input>          # decode and print entity #42
//	ifcdump -type IFCWALL <input>   # list only entities of one type
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/step"
)

var (
	id      = flag.Int64("id", 0, "decode and print a single entity by id")
	typeTag = flag.String("type", "", "list only entities whose type tag matches (case-insensitive)")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	idx, err := step.BuildIndex(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error indexing file: %v\n", err)
		os.Exit(1)
	}

	if *id != 0 {
		dumpEntity(source, idx, *id)
		return
	}
	listEntities(idx, *typeTag)
}

func listEntities(idx *step.Index, filterType string) {
	filterType = strings.ToUpper(filterType)
	for _, recID := range idx.IDs() {
		rec, ok := idx.Lookup(recID)
		if !ok {
			continue
		}
		if filterType != "" && rec.TypeTag != filterType {
			continue
		}
		fmt.Printf("#%d = %s [%d..%d]\n", rec.ID, rec.TypeTag, rec.Start, rec.End)
	}
	for _, d := range idx.Diagnostics() {
		fmt.Fprintf(os.Stderr, "diagnostic at offset %d: %s\n", d.Offset, d.Message)
	}
}

func dumpEntity(source []byte, idx *step.Index, entityID int64) {
	dec := decode.New(source, idx)
	e, err := dec.DecodeByID(entityID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding #%d: %v\n", entityID, err)
		os.Exit(1)
	}

	parts := make([]string, len(e.Attrs))
	for i, attr := range e.Attrs {
		parts[i] = formatValue(attr)
	}
	fmt.Printf("#%d = %s(%s)\n", entityID, e.TypeTag, strings.Join(parts, ", "))
}

func formatValue(v decode.Value) string {
	switch val := v.(type) {
	case decode.Ref:
		return fmt.Sprintf("#%d", val.ID)
	case decode.StringVal:
		return fmt.Sprintf("'%s'", val.Value)
	case decode.IntVal:
		return fmt.Sprintf("%d", val.Value)
	case decode.FloatVal:
		return fmt.Sprintf("%g", val.Value)
	case decode.EnumVal:
		return fmt.Sprintf(".%s.", val.Symbol)
	case decode.NullVal:
		return "$"
	case decode.DerivedVal:
		return "*"
	case decode.List:
		parts := make([]string, len(val.Items))
		for i, item := range val.Items {
			parts[i] = formatValue(item)
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ","))
	case decode.Typed:
		parts := make([]string, len(val.Args))
		for i, item := range val.Args {
			parts[i] = formatValue(item)
		}
		return fmt.Sprintf("%s(%s)", val.Name, strings.Join(parts, ","))
	default:
		return fmt.Sprintf("%v", val)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: ifcdump [options] <input.ifc>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  ifcdump model.ifc                  List every entity\n")
	fmt.Fprintf(os.Stderr, "  ifcdump -id 42 model.ifc           Decode and print entity #42\n")
	fmt.Fprintf(os.Stderr, "  ifcdump -type IFCWALL model.ifc    List only IFCWALL entities\n")
}
