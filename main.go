// Command volume evaluates a volume script and writes the resulting
// volumes and surface meshes as JSON.
//
// Usage:
//
//	volume [-o out.json] [-meshes=false] script.vox
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("volume: ")

	out := flag.String("o", "", "write JSON to `file` instead of stdout")
	meshes := flag.Bool("meshes", true, "include surface meshes in the output")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: volume [flags] script.vox\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	result := NewApp().Evaluate(string(source))
	if !*meshes {
		result.Meshes = []MeshData{}
	}

	if err := write(*out, result); err != nil {
		log.Fatal(err)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			log.Printf("line %d: %s", e.Line, e.Message)
		}
		os.Exit(1)
	}
}

// write encodes result to path, or to stdout when path is empty.
func write(path string, result EvalResult) error {
	if path == "" {
		return writeResult(os.Stdout, result)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeResult(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeResult(w io.Writer, result EvalResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
