package main

import (
	"fmt"

	"github.com/gosuri/uiprogress"

	"github.com/revelaction/disco/corpus"
	"github.com/revelaction/disco/stac"
	"github.com/revelaction/disco/storage/sqlite/zombiezen"
)

func importCommand(opts ImportOptions, ui UI) error {
	rd, err := stac.NewReader(opts.From)
	if err != nil {
		return err
	}

	ids, err := rd.Files()
	if err != nil {
		return err
	}
	ids = corpus.Filter(ids, filterPredicate(opts.Filter))

	pool, err := zombiezen.NewPool(opts.To)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := zombiezen.CreateCorpusTables(pool); err != nil {
		return fmt.Errorf("failed to create corpus tables: %w", err)
	}

	dst := zombiezen.NewCorpusStore(pool)

	fmt.Fprintf(ui.Out, "Reading corpus from %s...\n", opts.From)

	uiprogress.Start()
	bar := uiprogress.AddBar(len(ids))
	bar.AppendCompleted()
	bar.PrependElapsed()

	count := 0
	c, err := rd.SlurpEach(ids, func(cur, total int, id corpus.FileId) {
		bar.Incr()
	})
	if err != nil {
		uiprogress.Stop()
		return err
	}

	for _, id := range c.Keys() {
		if err := dst.Write(id, c[id]); err != nil {
			uiprogress.Stop()
			return fmt.Errorf("failed to write document %s: %w", id, err)
		}
		count++
	}
	uiprogress.Stop()

	fmt.Fprintf(ui.Out, "Successfully imported %d documents from %s to %s\n", count, opts.From, opts.To)
	return nil
}
