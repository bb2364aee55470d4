//go:build ignore

// Package main generates a synthetic hardware catalog for benchmarking
// the index pipeline at realistic sizes.
// Usage: go run scripts/generate-catalog.go -products 5000 -output testdata/catalog.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

var (
	numProducts = flag.Int("products", 5000, "Number of products to generate")
	outputPath  = flag.String("output", "testdata/catalog.json", "Output catalog file")
	seed        = flag.Int64("seed", 42, "Random seed for reproducibility")
)

type product struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Brand    string  `json:"brand,omitempty"`
	Price    float64 `json:"price,omitempty"`
}

var nouns = []string{
	"Tornillo", "Tuerca", "Clavo", "Abrazadera", "Perno", "Martillo",
	"Sierra", "Pinza", "Llave", "Destornillador", "Broca", "Alicate",
	"Arandela", "Codo", "Conector", "Manguera", "Grifo", "Valvula",
	"Bisagra", "Cerradura", "Manija", "Tubo", "Cable", "Cinta",
	"Silicona", "Pegamento", "Sellador", "Perfil", "Angulo", "Platina",
}

var qualifiers = []string{
	"galvanizado", "inoxidable", "de acero", "de bronce", "de cobre",
	"reforzado", "hexagonal", "autorroscante", "de presion", "ajustable",
	"para madera", "para concreto", "con rosca", "de seguridad", "grande",
	"mediano", "industrial", "de alta resistencia",
}

var categories = []string{
	"Fijaciones", "Herramientas", "Plomeria", "Electricidad",
	"Cerrajeria", "Adhesivos", "Perfiles", "Abrasivos",
}

var brands = []string{
	"", "Stanley", "Truper", "Bellota", "Fischer", "Sika", "3M",
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	catalog := make(map[string]product, *numProducts)
	for i := 0; i < *numProducts; i++ {
		noun := nouns[rng.Intn(len(nouns))]
		size := fmt.Sprintf("%dmm", 2+rng.Intn(60))
		code := fmt.Sprintf("%s-%04d", noun[:4], i)

		catalog[code] = product{
			Code:     code,
			Name:     fmt.Sprintf("%s %s %s", noun, qualifiers[rng.Intn(len(qualifiers))], size),
			Category: categories[rng.Intn(len(categories))],
			Brand:    brands[rng.Intn(len(brands))],
			Price:    float64(rng.Intn(50000)) / 100,
		}
	}

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputPath, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d products to %s\n", len(catalog), *outputPath)
}
