package main

import (
	"fmt"
	"io"
	"os"

	"github.com/garnizeh/jobboard/internal/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("JOBBOARD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	for _, src := range []string{cfg.RecordStore.DatabasePath, cfg.SessionPath} {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			fmt.Printf("Skipping %s: not found\n", src)
			continue
		}
		if err := copyFile(src, src+".bak"); err != nil {
			fmt.Fprintf(os.Stderr, "Backup error (%s): %v\n", src, err)
			os.Exit(1)
		}
		fmt.Printf("Backed up %s\n", src)
	}

	fmt.Println("Database backup completed.")
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
