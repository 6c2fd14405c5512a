package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosuri/uiprogress"

	"github.com/revelaction/disco/glozz"
	"github.com/revelaction/disco/stac"
	"github.com/revelaction/disco/storage/sqlite/zombiezen"
)

func exportCommand(opts ExportOptions, ui UI) error {
	pool, err := zombiezen.NewPool(opts.From)
	if err != nil {
		return err
	}
	defer pool.Close()
	src := zombiezen.NewCorpusStore(pool)

	// Ensure target directory exists
	if err := os.MkdirAll(opts.To, 0755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	ids, err := src.List()
	if err != nil {
		return err
	}

	uiprogress.Start()
	bar := uiprogress.AddBar(len(ids))
	bar.AppendCompleted()
	bar.PrependElapsed()

	count := 0
	for _, id := range ids {
		doc, err := src.Read(id)
		if err != nil {
			uiprogress.Stop()
			return fmt.Errorf("failed to read document %s: %w", id, err)
		}

		aaPath := stac.AnnotationPath(opts.To, id)
		if err := os.MkdirAll(filepath.Dir(aaPath), 0755); err != nil {
			uiprogress.Stop()
			return err
		}

		if err := glozz.WriteDocument(aaPath, doc); err != nil {
			uiprogress.Stop()
			return fmt.Errorf("failed to write file %s: %w", aaPath, err)
		}
		if err := glozz.WriteText(stac.TextPath(opts.To, id), doc); err != nil {
			uiprogress.Stop()
			return fmt.Errorf("failed to write text for %s: %w", id, err)
		}
		count++
		bar.Incr()
	}
	uiprogress.Stop()

	fmt.Fprintf(ui.Out, "Successfully exported %d documents from %s to %s\n", count, opts.From, opts.To)
	return nil
}
