package motion

import (
	"fmt"
	"os"
	"time"
)

// globalDebug mirrors the most recent SetDebugMode call so that node and
// loader code (which lack an Animation pointer) can check it cheaply.
var globalDebug bool

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// tree operations panic, load warnings and deep trees are reported on stderr,
// and every Animation.Update logs its timing.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// DebugMode reports whether debug mode is enabled.
func DebugMode() bool {
	return globalDebug
}

// debugStats holds per-update timing. Only populated in debug mode.
type debugStats struct {
	evaluateTime time.Duration
	worldTime    time.Duration
	layerCount   int
	visibleCount int
}

// debugLog prints timing stats to stderr.
func debugLog(name string, frame float64, stats debugStats) {
	if !globalDebug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[motion] %s frame %.2f | evaluate: %v | world: %v | layers: %d visible: %d\n",
		name, frame, stats.evaluateTime, stats.worldTime, stats.layerCount, stats.visibleCount)
}

// debugWarn reports a degraded load on stderr.
func debugWarn(err error) {
	if !globalDebug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[motion] warning: %v\n", err)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("motion debug: %s on disposed node %q", op, n.Name))
	}
}

// debugMaxTreeDepth is the depth past which debugCheckTreeDepth warns.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[motion] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// countLayers returns the number of layers in c and its nested compositions,
// and how many of them were visible at the last update. Layers of a hidden
// precomp are not visible.
func countLayers(c *Composition) (total, visible int) {
	if c == nil {
		return 0, 0
	}
	for _, l := range c.layers {
		total++
		if l.visible {
			visible++
		}
		t, v := countLayers(l.Comp)
		total += t
		if l.visible {
			visible += v
		}
	}
	return total, visible
}
