package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rigelquant/smacross/internal/engine"
	"gopkg.in/yaml.v3"
)

func main() {
	config := engine.DefaultConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		log.Fatalf("Failed to generate schema: %v", err)
	}

	schemaName := "simulation-config.json"
	schemaPath := filepath.Join("./config", schemaName)
	sampleConfigPath := filepath.Join("./config", "simulation-config.yaml")

	if err := os.MkdirAll(filepath.Dir(schemaPath), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	err = os.WriteFile(schemaPath, []byte(schemaJSON), 0644)
	if err != nil {
		log.Fatalf("Failed to write schema to file: %v", err)
	}

	// write sample config to file if doesn't exist
	if _, err := os.Stat(sampleConfigPath); os.IsNotExist(err) {
		yamlBytes, err := yaml.Marshal(config)
		if err != nil {
			log.Fatalf("Failed to marshal sample config to yaml: %v", err)
		}

		yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaName+"\n"), yamlBytes...)

		err = os.WriteFile(sampleConfigPath, yamlBytes, 0644)
		if err != nil {
			log.Fatalf("Failed to write sample config to file: %v", err)
		}

		log.Printf("Sample config successfully generated at %s", sampleConfigPath)
	}

	log.Printf("Schema successfully generated at %s", schemaPath)
}
