// Package main provides the Axon ML Framework CLI.
package main

import (
	"fmt"
	"os"

	"github.com/axon-ml/axon/backend"
	"github.com/axon-ml/axon/config"

	// Register the built-in engines.
	_ "github.com/axon-ml/axon/backend/cpu"
	_ "github.com/axon-ml/axon/backend/webgpu"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Axon ML Framework %s\n", version)
			return
		case "backends":
			printBackends()
			return
		case "config":
			printConfig()
			return
		}
	}

	fmt.Println("Axon ML Framework - Symbolic Tensor Graphs for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version     Show version")
	fmt.Println("  backends    List registered compute engines")
	fmt.Println("  config      Show the active configuration")
}

func printBackends() {
	def, err := backend.Default()
	defName := "unavailable"
	if err == nil {
		defName = def.Name()
	}
	fmt.Println("Registered engines:")
	for _, name := range backend.Names() {
		marker := " "
		if name == defName {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, name)
	}
	if err != nil {
		fmt.Printf("default engine error: %v\n", err)
	}
}

func printConfig() {
	path, err := config.Path()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config path: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Current()
	fmt.Printf("file:              %s\n", path)
	fmt.Printf("backend:           %s\n", cfg.Backend)
	fmt.Printf("floatx:            %s\n", cfg.Floatx)
	fmt.Printf("epsilon:           %g\n", cfg.Epsilon)
	fmt.Printf("image_data_format: %s\n", cfg.ImageDataFormat)
}
