// cmd/tools/content-registry/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"vortexzz-apply/pkg/registry"
)

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	initPath := initCmd.String("path", "configs/content.json", "Where to write the default content")
	force := initCmd.Bool("force", false, "Overwrite an existing file")

	updatePath := updateCmd.String("path", "configs/content.json", "Path to content file")
	field := updateCmd.String("field", "", "Field to update (inviteUrl, header, step.1.title, ...)")
	value := updateCmd.String("value", "", "New value for the field")

	validatePath := validateCmd.String("path", "configs/content.json", "Path to content file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		if err := initContent(*initPath, *force); err != nil {
			fmt.Printf("Error writing content: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default content to %s\n", *initPath)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *field == "" || *value == "" {
			fmt.Println("Error: field and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateContent(*updatePath, *field, *value); err != nil {
			fmt.Printf("Error updating content: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated %s to %q\n", *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Content validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Content validation passed. Version %s, %d steps, %d actions.\n",
			reg.Version, len(reg.Result.Steps), len(reg.Result.Actions))

	case "help":
		fallthrough
	default:
		help()
	}
}

func initContent(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use -force to overwrite", path)
	}
	reg, err := registry.Default()
	if err != nil {
		return err
	}
	return reg.Save(path, time.Now())
}

func updateContent(path, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	if err := reg.Set(field, value); err != nil {
		return err
	}
	return reg.Save(path, time.Now())
}

func help() {
	fmt.Println(`
Usage: content-registry <command> [flags]

Commands:
  init      Write the built-in result content to a file
  update    Change one text field of a content file
  validate  Validate a content file against the schema
  help      Show this help message

Examples:
  content-registry init -path configs/content.json
  content-registry update -field inviteUrl -value https://discord.gg/abc123
  content-registry update -field step.2.body -value "Öffne ein Ticket im Support-Channel"
  content-registry validate -path configs/content.json

Point content.registry_path at the file to serve it.`)
}
