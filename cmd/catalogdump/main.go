package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"celflicks/internal/domain/videos"
	"celflicks/internal/snapshot"

	"github.com/k0kubun/pp/v3"
)

// catalogdump pretty-prints the catalog snapshot the API keeps on disk.
func main() {
	dir := flag.String("dir", os.Getenv("SNAPSHOT_PATH"), "snapshot directory")
	summary := flag.Bool("summary", false, "print counts per category only")
	flag.Parse()

	if *dir == "" {
		log.Fatal("snapshot directory is required (-dir or SNAPSHOT_PATH)")
	}

	fs := snapshot.NewFileStore(*dir)
	snap, err := fs.Load()
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			log.Fatalf("no snapshot at %s", fs.Path())
		}
		log.Fatal(err)
	}

	if *summary {
		fmt.Printf("%s saved %s\n", fs.Path(), snap.SavedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("videos: %d\n", len(snap.Videos))
		for _, c := range videos.Categories() {
			fmt.Printf("  %-12s %d\n", c, len(snap.Featured[c]))
		}
		return
	}

	printer := pp.New()
	printer.SetColoringEnabled(isTerminal(os.Stdout))
	printer.Println(snap)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
