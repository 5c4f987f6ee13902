package mcpserver

import (
	"encoding/json"
	"strings"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	serverName     = "io.github.panbanda/mrsummary"
	publisherKey   = "io.modelcontextprotocol.registry/publisher-provided"
)

// Manifest is the registry entry (server.json) for the mrsummary server.
// The tools and prompts it lists are read from the same tables the server
// registers from.
type Manifest struct {
	Schema      string         `json:"$schema"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Repository  Repository     `json:"repository"`
	Packages    []Package      `json:"packages"`
	Meta        map[string]any `json:"_meta,omitempty"`
}

// Repository is the source location.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package is an OCI image that runs "mrsummary mcp" over stdio.
type Package struct {
	RegistryType     string     `json:"registryType"`
	Identifier       string     `json:"identifier"`
	PackageArguments []Argument `json:"packageArguments"`
	Transport        Transport  `json:"transport"`
}

type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type Transport struct {
	Type string `json:"type"`
}

// Capability is one tool or prompt as listed in the manifest metadata.
type Capability struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Capabilities lists the server's tools and prompts.
type Capabilities struct {
	Tools   []Capability `json:"tools"`
	Prompts []Capability `json:"prompts"`
}

// GenerateManifest renders the manifest for version. Development builds are
// published as 0.0.0.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" || version == "dev" {
		version = "0.0.0"
	}
	caps, err := capabilities()
	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(Manifest{
		Schema:      manifestSchema,
		Name:        serverName,
		Description: "Merge request summaries, commit categories, and changed files from git history",
		Version:     version,
		Repository:  Repository{URL: "https://github.com/panbanda/mrsummary", Source: "github"},
		Packages: []Package{{
			RegistryType:     "oci",
			Identifier:       "ghcr.io/panbanda/mrsummary:" + version,
			PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
			Transport:        Transport{Type: "stdio"},
		}},
		Meta: map[string]any{publisherKey: caps},
	}, "", "  ")
}

func capabilities() (Capabilities, error) {
	caps := Capabilities{Tools: []Capability{}, Prompts: []Capability{}}
	for _, t := range toolCatalog {
		caps.Tools = append(caps.Tools, Capability{Name: t.name, Summary: firstLine(t.describe())})
	}

	prompts, err := loadPrompts()
	if err != nil {
		return caps, err
	}
	for _, p := range prompts {
		caps.Prompts = append(caps.Prompts, Capability{Name: p.name, Summary: p.fm.Description})
	}
	return caps, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
