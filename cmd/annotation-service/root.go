package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "annotation-service",
	Short: "Collaborative image-annotation backend",
	Long: `annotation-service manages collaborative annotation of image
collections imported from IIIF manifests, flat filesystems and external
ontologies. It resolves object images against the IIIF Image APIs, serves
them through a local TTL-bound cache, and arbitrates editing sessions with
advisory per-object locks.`,
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}
