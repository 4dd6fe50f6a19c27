// Package notify announces decision-core events to the operator.
package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"swing-trader/internal/models"
	"swing-trader/internal/regime"
	"swing-trader/pkg/utils"
)

// Notifier receives decision-core events. A nil Notifier is valid and drops
// everything.
type Notifier interface {
	RegimeChanged(transition regime.Transition)
	RotationApplied(event models.RotationEvent)
	ForceCloseDue(symbols []string, now time.Time)
	TradingHalted(lossPct float64)
	Error(context string, err error)
}

// TerminalNotifier writes formatted event lines to a writer, normally stdout
// of the long-running daemon.
type TerminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewTerminalNotifier creates a notifier writing to out.
func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out, now: time.Now}
}

func (n *TerminalNotifier) RegimeChanged(transition regime.Transition) {
	n.printf("REGIME  %s -> %s", transition.Previous, transition.Current)
}

func (n *TerminalNotifier) RotationApplied(event models.RotationEvent) {
	line := fmt.Sprintf("ROTATE  [%s] active=%d", event.Trigger, len(event.Activated))
	if len(event.RotatedIn) > 0 {
		line += " in: " + utils.FormatSymbolList(event.RotatedIn, 8)
	}
	if len(event.RotatedOut) > 0 {
		line += " out: " + utils.FormatSymbolList(event.RotatedOut, 8)
	}
	if len(event.Watchlisted) > 0 {
		line += " watchlisted: " + utils.FormatSymbolList(event.Watchlisted, 8)
	}
	n.printf("%s", line)
}

func (n *TerminalNotifier) ForceCloseDue(symbols []string, now time.Time) {
	if len(symbols) == 0 {
		return
	}
	n.printf("CLOSE   deadline passed: %s", strings.Join(symbols, ", "))
}

func (n *TerminalNotifier) TradingHalted(lossPct float64) {
	n.printf("HALT    weekly loss limit hit (%s), entries blocked until next rotation",
		utils.FormatPercent(-lossPct))
}

func (n *TerminalNotifier) Error(context string, err error) {
	n.printf("ERROR   %s: %v", context, err)
}

func (n *TerminalNotifier) printf(format string, args ...interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	stamp := n.now().In(utils.NYLocation).Format("2006-01-02 15:04:05")
	fmt.Fprintf(n.out, "[%s] %s\n", stamp, fmt.Sprintf(format, args...))
}
