package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"questarena/server"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema (stdout when empty)")
	flag.Parse()

	data, err := json.MarshalIndent(buildSchema(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal schema: %v\n", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if outPath == "" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}

	client := reflector.Reflect(&server.ClientMessage{})
	client.Version = ""
	client.Title = "Client Message"
	client.Description = "Flat client→server command; fields used depend on type."

	events := make([]*jsonschema.Schema, 0, len(server.ServerEvents()))
	for _, ev := range server.ServerEvents() {
		s := reflector.Reflect(ev)
		s.Version = ""
		s.Title = ev.EventType()
		events = append(events, s)
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Quest Arena Protocol",
		Description: "Every frame exchanged over /ws. Server events carry a type discriminator.",
		OneOf: append([]*jsonschema.Schema{client}, &jsonschema.Schema{
			Title: "Server Event",
			OneOf: events,
		}),
	}
}
