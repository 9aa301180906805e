package host

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/enginehost/internal/assets"
)

// Stage runs one staging pass of opts.Source into opts.Layout and journals
// it. A *assets.PartialFailure is returned as is; the report is valid
// either way.
//
// Shells that host several surfaces call Stage once up front and build
// each Host with Staged set, since passes must not overlap.
func Stage(opts Options) (assets.Report, error) {
	if opts.Source == nil {
		return assets.Report{}, errors.New("host: no asset source")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	stager := assets.NewStager(logger, opts.Classifier)
	report, err := stager.StageLayout(opts.Source, opts.Layout)

	if opts.Journal != nil && !report.Started.IsZero() {
		run := StageRun{
			Source:   opts.SourceName,
			Dest:     report.Dest,
			Files:    report.Files,
			Bytes:    report.Bytes,
			Skipped:  len(report.Skipped),
			Started:  report.Started,
			Duration: report.Duration,
		}
		for _, e := range report.Skipped {
			run.Errors = append(run.Errors, e.Error())
		}
		if jerr := opts.Journal.SaveStageRun(run); jerr != nil {
			logger.WithPrefix("host").Warn("journal write failed", "error", jerr)
		}
	}
	return report, err
}
