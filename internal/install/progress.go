package install

import (
	"fmt"
	"io"
	"time"

	"github.com/conn-castle/grab/internal/messages"
)

const progressInterval = time.Second

// FormatSize renders a byte count with 1024-based units and two decimals.
func FormatSize(b int64) string {
	const unit = 1024
	switch {
	case b < unit:
		return fmt.Sprintf("%d B", b)
	case b < unit*unit:
		return fmt.Sprintf("%.2f KB", float64(b)/unit)
	case b < unit*unit*unit:
		return fmt.Sprintf("%.2f MB", float64(b)/unit/unit)
	default:
		return fmt.Sprintf("%.2f GB", float64(b)/unit/unit/unit)
	}
}

// progressWriter counts bytes written through it and prints a status line
// at most once per progressInterval. A total of zero or less is unknown.
type progressWriter struct {
	out   io.Writer
	total int64
	read  int64
	last  time.Time
	now   func() time.Time
}

func newProgressWriter(out io.Writer, total int64, now func() time.Time) *progressWriter {
	return &progressWriter{out: out, total: total, last: now(), now: now}
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.read += int64(len(b))
	if t := p.now(); t.Sub(p.last) > progressInterval {
		p.report()
		p.last = t
	}
	return len(b), nil
}

func (p *progressWriter) report() {
	if p.out == nil {
		return
	}
	if p.total <= 0 {
		_, _ = fmt.Fprintf(p.out, messages.InstallProgressUnknownFmt, FormatSize(p.read))
		return
	}
	_, _ = fmt.Fprintf(p.out, messages.InstallProgressFmt, FormatSize(p.read), FormatSize(p.total), p.read*100/p.total)
}
