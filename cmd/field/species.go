package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cascadiaherp/shellwatch/internal/species"
)

var speciesCmd = &cobra.Command{
	Use:   "species",
	Short: "List the turtle species in the field guide",
	RunE:  runSpecies,
}

var guideCmd = &cobra.Command{
	Use:   "guide <species-id>",
	Short: "Show the full field guide entry for one species",
	Args:  cobra.ExactArgs(1),
	RunE:  runGuide,
}

func init() {
	rootCmd.AddCommand(speciesCmd)
	rootCmd.AddCommand(guideCmd)
}

func runSpecies(cmd *cobra.Command, args []string) error {
	catalog, err := species.Load()
	if err != nil {
		return fmt.Errorf("failed to load species catalog: %w", err)
	}

	fmt.Printf("%-26s %-28s %s\n", "ID", "COMMON NAME", "NATIVE")
	for _, entry := range catalog.List() {
		native := "yes"
		if !entry.Native {
			native = "no"
		}
		fmt.Printf("%-26s %-28s %s\n", entry.ID, entry.CommonName, native)
	}
	fmt.Printf("%-26s %-28s %s\n", species.UnknownID, "Not sure / unidentified", "-")
	return nil
}

func runGuide(cmd *cobra.Command, args []string) error {
	catalog, err := species.Load()
	if err != nil {
		return fmt.Errorf("failed to load species catalog: %w", err)
	}

	entry, ok := catalog.FindByID(args[0])
	if !ok {
		return fmt.Errorf("no guide entry for %q (run 'field species' for the list)", args[0])
	}

	fmt.Println(entry.CommonName)
	fmt.Println(strings.Repeat("=", len(entry.CommonName)))
	if entry.Native {
		fmt.Println("Native species")
	} else {
		fmt.Println("Non-native species")
	}
	fmt.Println()

	printSection("Description", entry.Description)
	printSection("Habitat", entry.Habitat)
	printSection("Status", entry.Status)
	printSection("Range", entry.Range)
	printSection("Impacts", entry.Impacts)
	printSection("Regulations", entry.Regulations)

	if entry.SourceURL != "" {
		fmt.Printf("Source: %s\n", entry.SourceURL)
	}
	return nil
}

func printSection(title string, paragraphs []string) {
	if len(paragraphs) == 0 {
		return
	}
	fmt.Println(title)
	for _, p := range paragraphs {
		fmt.Println("  " + p)
	}
	fmt.Println()
}
