package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/marcelsud/telegram-ragbot/persona"
)

/* validate-persona - Standalone CLI tool to validate a persona file
 * Usage: go run ./cmd/validate-persona [persona.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	personaFile := "persona.yaml"
	if len(os.Args) > 1 {
		personaFile = os.Args[1]
	}

	fmt.Printf("Validating persona file: %s\n", personaFile)

	loader := persona.NewLoader()
	if err := loader.Load(personaFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := loader.Persona()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Name:             %s\n", p.Name)
	fmt.Printf("Owner:            %s\n", p.Owner)
	fmt.Printf("Max reply length: %d\n", p.MaxReplyLength)

	keys := make([]string, 0, len(p.Fallbacks))
	for k := range p.Fallbacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("Fallbacks:        %d\n", len(keys))
	for _, k := range keys {
		fmt.Printf("  - %s\n", k)
	}
}
