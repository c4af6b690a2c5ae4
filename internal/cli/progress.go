package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/mvp-joe/codelens/internal/scan"
	"github.com/schollz/progressbar/v3"
)

// scanProgress renders a progress bar while files are parsed.
type scanProgress struct {
	quiet bool
	out   io.Writer
	bar   *progressbar.ProgressBar
}

func newScanProgress(out io.Writer, quiet bool) *scanProgress {
	return &scanProgress{quiet: quiet, out: out}
}

// Start creates the bar for total files.
func (p *scanProgress) Start(total int) {
	if p.quiet || total == 0 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Parsing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.out)
		}),
	)
}

// OnFile is passed to scan.WithProgress. ProgressBar locks internally, so workers may call it concurrently.
func (p *scanProgress) OnFile(scan.FileResult) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *scanProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
