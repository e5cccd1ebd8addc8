package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"docnav/internal/convert"
	"docnav/internal/doctree"
	"docnav/internal/store"
	"docnav/internal/summarize"
)

// Worker processes a single document job: convert to markdown, build the
// tree, summarize it, register it.
type Worker struct {
	summarizer *summarize.Summarizer
	docs       *store.Store
	log        *slog.Logger

	buildOpts        doctree.Options
	summariesEnabled bool
	pdfFallback      bool
}

func NewWorker(summarizer *summarize.Summarizer, docs *store.Store, log *slog.Logger, buildOpts doctree.Options, summariesEnabled, pdfFallback bool) *Worker {
	return &Worker{
		summarizer:       summarizer,
		docs:             docs,
		log:              log,
		buildOpts:        buildOpts,
		summariesEnabled: summariesEnabled,
		pdfFallback:      pdfFallback,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)
	defer job.ReleaseFileData()

	// Phase 1: convert to markdown.
	job.SetStatus(StatusConverting, "converting")
	conv, err := convert.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "converting")
		return
	}
	if pdfConv, ok := conv.(*convert.PDFConverter); ok {
		pdfConv.FallbackPdftotext = w.pdfFallback
	}

	markdown, err := conv.ToMarkdown(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.AddError(fmt.Sprintf("convert: %s", err))
		job.SetStatus(StatusFailed, "converting")
		return
	}

	hash := ContentHashHex([]byte(markdown))
	job.SetContentHash(hash)

	// Phase 1.5: dedup on converted content.
	if !job.Force {
		if existingID, ok := w.docs.ByHash(hash); ok {
			log.Info("duplicate document, skipping", "existing_doc_id", existingID)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 2: build the tree.
	job.SetStatus(StatusBuilding, "building tree")
	docName := job.DocName
	if docName == "" {
		docName = strings.TrimSuffix(job.Filename, filepath.Ext(job.Filename))
	}
	tree, err := doctree.Build(docName, markdown, w.buildOpts)
	if err != nil {
		log.Error("tree build failed", "error", err)
		job.AddError(fmt.Sprintf("build: %s", err))
		job.SetStatus(StatusFailed, "building")
		return
	}
	job.SetTotalNodes(tree.NodeCount())
	log.Info("tree built", "nodes", tree.NodeCount())

	// Phase 3: summaries. Optional and never fatal: a document without
	// summaries is still fully queryable.
	summaryFailures := 0
	if w.summariesEnabled && w.summarizer != nil && tree.NodeCount() > 0 {
		job.SetStatus(StatusSummarizing, "summarizing")

		desc, err := w.summarizer.DescribeDocument(ctx, docName, markdown)
		if err != nil {
			log.Warn("doc description failed", "error", err)
		} else {
			tree.DocDescription = desc
		}

		summaryFailures = w.summarizer.SummarizeTree(ctx, tree)
		job.AddSummaries(tree.NodeCount()-summaryFailures, summaryFailures)
		if summaryFailures > 0 {
			job.AddError(fmt.Sprintf("%d node summaries failed", summaryFailures))
		}
		log.Info("summarization complete", "failed", summaryFailures)
	}

	// Phase 4: register the tree for retrieval.
	w.docs.Put(&store.Record{
		DocID:       job.DocID,
		Filename:    job.Filename,
		ContentHash: hash,
		CreatedAt:   time.Now(),
		Tree:        tree,
	})

	if summaryFailures > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}
