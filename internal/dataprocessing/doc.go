// Package dataprocessing provides the data cleaning pipeline for
// epidemiological time-series datasets in the OWID CSV format.
//
// # Architecture
//
// The package is organized into four main components:
//
// 1. Parser: reads CSV or XLSX sources and extracts per-entity observations
// 2. Cleaner: sorts, deduplicates, and interpolates each entity's series
// 3. Deriver: computes metrics from already-cleaned columns
// 4. Summarizer: generates per-entity snapshot summaries
//
// # Usage
//
// Run the full pipeline:
//
//	p := dataprocessing.NewPipeline(logger)
//	result, err := p.LoadAndClean(ctx, "owid-covid-data.csv", dataprocessing.Options{
//	    Entities: []string{"United States", "India", "Canada"},
//	})
//
// Generate summaries:
//
//	summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig())
//	summaries := summarizer.Summarize(ctx, result)
//
// # Data Flow
//
// The typical data flow through this package:
//
//	CSV/XLSX File → Parser → Observations → Cleaner → Series → Deriver → Result
//
// The pipeline is a pure function of its inputs: the same source, entity set,
// and date range always produce identical output tables. The source file is
// read once and never mutated.
package dataprocessing
