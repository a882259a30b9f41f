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

	// Restores whichever backups db_backup left behind.
	restored := 0
	for _, dst := range []string{cfg.RecordStore.DatabasePath, cfg.SessionPath} {
		src := dst + ".bak"
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, dst); err != nil {
			fmt.Fprintf(os.Stderr, "Restore error (%s): %v\n", dst, err)
			os.Exit(1)
		}
		fmt.Printf("Restored %s\n", dst)
		restored++
	}
	if restored == 0 {
		fmt.Fprintln(os.Stderr, "Restore error: no backups found")
		os.Exit(1)
	}

	fmt.Println("Database restore completed.")
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
