package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RIMANOuk/gallery-grabber/pkg/gallery"
	"github.com/RIMANOuk/gallery-grabber/pkg/logger"
)

var (
	scanOutput     string
	scanName       string
	scanHideAssets bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Scan a page once and optionally write a zip",
	Long: `Scans the page, prints every discovered image URL and, when -o is
given, downloads the images into a zip archive.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "write a zip archive to this path")
	scanCmd.Flags().StringVar(&scanName, "name", "", "archive display name")
	scanCmd.Flags().BoolVar(&scanHideAssets, "hide-assets", false, "exclude site assets (logos, icons, badges)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	service := gallery.New(cfg, log)
	ctx := context.Background()

	pageURL := args[0]
	token, err := service.Scan(ctx, pageURL, scanName, scanHideAssets)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	result, err := service.Lookup(token)
	if err != nil {
		return err
	}

	if len(result.Images) == 0 {
		fmt.Println("No images found.")
		return nil
	}

	for _, imageURL := range result.Images {
		fmt.Println(imageURL)
	}

	if scanOutput == "" {
		return nil
	}

	data, _, err := service.ArchiveAll(ctx, token)
	if err != nil {
		return fmt.Errorf("archive failed: %w", err)
	}

	if err := os.WriteFile(scanOutput, data, 0644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	log.InfoWithFields("archive written", map[string]interface{}{
		"path":   scanOutput,
		"images": len(result.Images),
	})

	return nil
}
