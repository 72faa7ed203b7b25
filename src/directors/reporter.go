package directors

import (
	"context"
	"fmt"
	"io"
	"time"

	"cdcdocstore/src/helpers"
	"cdcdocstore/src/metrics"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Reporter runs operations and reports them: a start notice, then the
// result or the failure.
type Reporter struct {
	out     io.Writer
	logger  *zap.SugaredLogger
	metrics *metrics.Recorder

	heading lipgloss.Style
	failure lipgloss.Style
}

// NewReporter writes reports to out. Styling is dropped when out is not a
// terminal.
func NewReporter(out io.Writer, logger *zap.SugaredLogger, recorder *metrics.Recorder) *Reporter {
	renderer := lipgloss.NewRenderer(out)
	return &Reporter{
		out:     out,
		logger:  logger,
		metrics: recorder,
		heading: renderer.NewStyle().Bold(true),
		failure: renderer.NewStyle().Foreground(lipgloss.Color("#ff5f56")),
	}
}

// Run invokes op with the shared context and reports it.
func (r *Reporter) Run(ctx context.Context, op Operation, opCtx *OperationContext) (interface{}, error) {
	fmt.Fprintln(r.out, r.heading.Render(fmt.Sprintf("Running operation %s ...", op.Name)))
	r.logger.Infow("Running operation", "operation", op.Name)

	start := time.Now()
	result, err := op.Run(ctx, opCtx)
	elapsed := time.Since(start)
	if r.metrics != nil {
		r.metrics.Observe(op.Name, elapsed, err)
	}

	if err != nil {
		fmt.Fprintln(r.out, r.failure.Render(fmt.Sprintf("%s failed: %v", op.Name, err)))
		r.logger.Errorw("Operation failed", "operation", op.Name, "duration", elapsed, "error", err)
		return nil, fmt.Errorf("operation %s: %w", op.Name, err)
	}

	fmt.Fprintln(r.out, r.heading.Render(fmt.Sprintf("%s result:", op.Name)))
	fmt.Fprintln(r.out, helpers.FormatResult(result))
	r.logger.Infow("Operation finished", "operation", op.Name, "duration", elapsed)
	return result, nil
}
