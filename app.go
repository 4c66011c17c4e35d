package main

import (
	"log"

	"github.com/chazu/volume/pkg/engine"
	"github.com/chazu/volume/pkg/volume"
)

// colorPalette is a default palette used to assign distinct colors to volumes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App evaluates scripts and turns the resulting workspace into
// serializable meshes.
type App struct {
	engine *engine.Engine
}

// MeshData is the JSON-serializable mesh format written by the CLI.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// VolumeData summarizes one named volume.
type VolumeData struct {
	Name     string   `json:"name"`
	Min      [3]int64 `json:"min"`
	Max      [3]int64 `json:"max"`
	Capacity uint64   `json:"capacity"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Volumes []VolumeData    `json:"volumes"`
	Meshes  []MeshData      `json:"meshes"`
	Errors  []EvalErrorData `json:"errors"`
}

// NewApp creates a new App with a fresh engine.
func NewApp() *App {
	return &App{engine: engine.NewEngine()}
}

// Evaluate takes script source and returns volume summaries, mesh data and
// errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Volumes: []VolumeData{},
		Meshes:  []MeshData{},
		Errors:  []EvalErrorData{},
	}

	// Step 1: Evaluate the source into a workspace of named volumes.
	ws, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the output format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Summarize every volume.
	for _, name := range ws.Names() {
		result.Volumes = append(result.Volumes, summarize(name, ws.Lookup(name).BoundingBox()))
	}

	// Step 4: Extract surface meshes and assign colors.
	for i, m := range ws.Meshes() {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	return result
}

func summarize(name string, bb volume.BoundingBox) VolumeData {
	return VolumeData{
		Name:     name,
		Min:      bb.Min(),
		Max:      bb.Max(),
		Capacity: bb.Capacity(),
	}
}
