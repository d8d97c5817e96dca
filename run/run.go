// Package run drives a full pipeline run: ingest rows, process sections per
// activity, and write every export artifact into a per-run directory.
package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/eligrid/eligrid/export"
	"github.com/eligrid/eligrid/internal/pipeline"
	"github.com/eligrid/eligrid/internal/runio"
	"github.com/eligrid/eligrid/internal/types"
)

// Options configure one run.
type Options struct {
	InputPath     string
	OutputRoot    string
	OperatorsPath string
	MappingPath   string
	MaxRules      int
	ShowProgress  bool
}

// Result is the outcome of a whole run.
type Result struct {
	RunID      string
	RunDir     string
	Activities map[string][]types.SectionResult
}

// Summary aggregates section counts across activities.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Summarize counts section outcomes.
func (r *Result) Summarize() Summary {
	var s Summary
	for _, sections := range r.Activities {
		for _, section := range sections {
			s.Total++
			if section.Status == types.StatusOK {
				s.Succeeded++
			} else {
				s.Failed++
			}
		}
	}
	return s
}

// Process executes a full run. Section failures are recorded per section;
// only run-level problems (unreadable input, bad operator config, output I/O)
// abort with an error.
func Process(ctx context.Context, logger *zap.Logger, opts Options) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))
	runLog := logger.With(zap.String("stage", string(types.StageRun)))

	runLog.Info("START",
		zap.String("input", opts.InputPath),
		zap.String("output", opts.OutputRoot),
		zap.Int("max_rules", opts.MaxRules))

	runDir, err := runio.CreateRunDir(opts.OutputRoot)
	if err != nil {
		runLog.Error("FAILED: could not create run directory", zap.Error(err))
		return nil, err
	}

	runner, err := pipeline.NewRunner(logger, pipeline.Options{
		OperatorsPath: opts.OperatorsPath,
		MappingPath:   opts.MappingPath,
		MaxRules:      opts.MaxRules,
	})
	if err != nil {
		return nil, err
	}

	loadLog := logger.With(zap.String("stage", string(types.StageLoadRows)))
	loadLog.Info("START")
	rows, err := pipeline.LoadRows(opts.InputPath)
	if err != nil {
		loadLog.Error("FAILED", zap.Error(err))
		return nil, err
	}
	loadLog.Info("OK", zap.Int("rows", len(rows)))

	sections := pipeline.GroupRows(rows)
	logger.Info("GROUPED",
		zap.String("stage", string(types.StageGroupRows)),
		zap.Int("sections", len(sections)))

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.NewOptions(len(sections),
			progressbar.OptionSetDescription("sections"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
		)
	}

	activities := map[string][]types.SectionResult{}
	for _, section := range sections {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result := runner.ProcessSection(section)
		activity := section.Key.Activity
		if activity == "" {
			activity = "Unknown"
		}
		activities[activity] = append(activities[activity], result)
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Println()
	}

	if err := exportActivities(logger, runDir, runID, activities); err != nil {
		return nil, err
	}

	if missing := runner.MissingMeta(); len(missing) > 0 {
		sample := missing
		if len(sample) > 20 {
			sample = sample[:20]
		}
		runLog.Warn("MISSING_MAPPING", zap.Int("missing", len(missing)), zap.Strings("sample", sample))
	}

	runLog.Info("DONE")
	return &Result{RunID: runID, RunDir: runDir, Activities: activities}, nil
}

func exportActivities(logger *zap.Logger, runDir, runID string, activities map[string][]types.SectionResult) error {
	names := make([]string, 0, len(activities))
	for name := range activities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, activity := range names {
		sections := activities[activity]
		ref := "C=" + activity

		initLog := logger.With(zap.String("stage", string(types.StageExportInit)), zap.String("section", ref))
		initLog.Info("START")
		activityDir := filepath.Join(runDir, runio.SanitizeFileName(activity))
		markdownDir := filepath.Join(activityDir, "confluence")
		if err := os.MkdirAll(markdownDir, 0o755); err != nil {
			initLog.Error("FAILED", zap.Error(err))
			return err
		}
		initLog.Info("OK")

		// Sheet names are unique within one activity workbook.
		used := map[string]bool{}
		for i := range sections {
			if sections[i].Status != types.StatusOK {
				continue
			}
			sections[i].SheetName = runio.UniqueSheetName(sections[i].SheetName, used)

			mdLog := logger.With(
				zap.String("stage", string(types.StageExportSection)),
				zap.String("section", pipeline.SectionRef(sections[i].Key)))
			mdLog.Info("START")
			if err := export.WriteSectionMarkdown(markdownDir, sections[i], activity); err != nil {
				// Reflect the failure on the section; keep exporting the rest.
				mdLog.Error("FAILED", zap.Error(err))
				sections[i].Status = types.StatusFailed
				sections[i].Err = fmt.Sprintf("export failed: %v", err)
				continue
			}
			mdLog.Info("OK")
		}

		sheetLog := logger.With(zap.String("stage", string(types.StageExportSheet)), zap.String("section", ref))
		sheetLog.Info("START")
		workbookPath := filepath.Join(activityDir, runio.SanitizeFileName(activity)+".csv")
		if err := export.WriteWorkbook(workbookPath, activity, sections); err != nil {
			sheetLog.Error("FAILED", zap.Error(err))
			return err
		}
		sheetLog.Info("OK", zap.String("path", workbookPath))

		docsLog := logger.With(zap.String("stage", string(types.StageExportActivity)), zap.String("section", ref))
		docsLog.Info("START")
		if err := export.WriteDocs(activityDir, activity, runID, sections); err != nil {
			docsLog.Error("FAILED", zap.Error(err))
			return err
		}
		docsLog.Info("OK")
	}
	return nil
}
