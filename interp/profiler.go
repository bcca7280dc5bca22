package interp

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// LargeVectorThreshold is the byte-size cutoff between the large_v and
// small_v allocation buckets (§4.6).
const LargeVectorThreshold = 1 << 10

// capturedStack is one sampled snapshot of the caller chain, innermost
// frame first (the current statement's function, then each activation
// from youngest to oldest), plus the memory-delta bucket values in effect
// at capture time.
type capturedStack struct {
	frames []sampledFrame
	mem    memoryDelta
}

type sampledFrame struct {
	functionName string
	file         string
	line         int
	haveFileLine bool
}

type memoryDelta struct {
	largeV, smallV, nodes, copied int64
}

// Profiler is the C7 sampling profiler: a background timer goroutine
// sets a tick flag at fixed wall-clock intervals; the interpreter's
// statement-entry hook drains it and, when set, snapshots the current
// caller chain.
type Profiler struct {
	rt *Runtime

	mu      sync.Mutex
	enabled bool

	outPath string
	out     *os.File

	intervalNS int64
	mem        bool
	line       bool

	tick    atomic.Bool
	running atomic.Bool
	stopCh  chan struct{}
	group   *errgroup.Group

	delta memoryDelta

	stacks []capturedStack
	files  []string
	fileIx map[string]int
}

func newProfiler(rt *Runtime) *Profiler {
	return &Profiler{rt: rt, fileIx: map[string]int{}}
}

// Enabled reports whether the profiler is currently running.
func (p *Profiler) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Start begins profiling per §4.6. An empty path stops the profiler
// instead, matching §6's "output filename empty ⇒ stop" rule. Starting
// while already enabled performs an implicit stop first.
func (p *Profiler) Start(path string, intervalSeconds float64, mem, line bool) error {
	if path == "" {
		return p.Stop()
	}

	p.mu.Lock()
	if p.enabled {
		p.mu.Unlock()
		if err := p.Stop(); err != nil {
			return err
		}
		p.mu.Lock()
	}
	defer p.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "profiler start", Err: err}
	}

	p.outPath = path
	p.out = f
	p.mem = mem
	p.line = line
	p.intervalNS = int64(intervalSeconds * float64(time.Second))
	p.stacks = nil
	p.files = nil
	p.fileIx = map[string]int{}
	p.delta = memoryDelta{}
	p.enabled = true
	p.running.Store(true)
	p.stopCh = make(chan struct{})

	p.rt.log.Debugw("profiler started", "path", path, "interval_ns", p.intervalNS, "mem", mem, "line", line)

	g := &errgroup.Group{}
	p.group = g
	g.Go(func() error {
		p.timerLoop(p.intervalNS, p.stopCh)
		return nil
	})
	return nil
}

func (p *Profiler) timerLoop(intervalNS int64, stop chan struct{}) {
	d := time.Duration(intervalNS)
	if d <= 0 {
		d = time.Millisecond
	}
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !p.running.Load() {
				return
			}
			p.tick.Store(true)
		}
	}
}

// OnStatement is the statement-entry hook (§4.6 "Install a
// statement-entry hook"). Callers invoke it at every AST statement
// boundary; it no-ops unless a tick is pending.
func (p *Profiler) OnStatement(ctx *Context, current *Node) {
	if !p.tick.CompareAndSwap(true, false) {
		return
	}
	p.snapshot(ctx, current)
}

func (p *Profiler) snapshot(ctx *Context, current *Node) {
	var frames []sampledFrame
	if current != nil {
		if sf, ok := p.sampledFrameFor(current); ok {
			frames = append(frames, sf)
		}
	}

	f := ctx.frame
	for f != nil {
		uc := UnwrapPromiseCaller(f.caller)
		if uc != nil && uc.Valid() {
			if sf, ok := p.sampledFrameFor(uc.syntaxNode); ok {
				frames = append(frames, sf)
			}
		}
		f = f.anc
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	cs := capturedStack{frames: frames}
	if p.mem {
		cs.mem = p.delta
		p.delta = memoryDelta{}
	}
	p.stacks = append(p.stacks, cs)
}

func (p *Profiler) sampledFrameFor(n *Node) (sampledFrame, bool) {
	if n == nil {
		return sampledFrame{}, false
	}
	name := n.FunctionName()
	if name == "" {
		return sampledFrame{}, false
	}
	sf := sampledFrame{functionName: name}
	if p.line {
		if pos := n.SourceSection(); pos.File != "" {
			sf.file = pos.File
			sf.line = pos.Line
			sf.haveFileLine = true
		}
	}
	return sf, true
}

// RecordAllocation implements the allocation listener (§4.6): it buckets
// a newly allocated value's size by kind.
func (p *Profiler) RecordAllocation(v Value) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || !p.mem {
		return
	}
	sz := v.Size()
	switch v.(type) {
	case *List, *Pairlist, *ArgsAndNames:
		if sz >= LargeVectorThreshold {
			p.delta.largeV += sz
		} else {
			p.delta.smallV += sz
		}
	default:
		p.delta.nodes += sz
	}
}

// RecordCopy implements the copy listener (§4.6): copied source bytes
// accumulate in the fourth bucket.
func (p *Profiler) RecordCopy(size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || !p.mem {
		return
	}
	p.delta.copied += size
}

// Stop ends profiling, writes the output file, and deregisters
// listeners (§4.6). One final tick may already be in flight; the
// statement hook simply no-ops against it once running is cleared.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	if !p.enabled {
		p.mu.Unlock()
		return nil
	}
	p.running.Store(false)
	close(p.stopCh)
	group := p.group
	p.mu.Unlock()

	if group != nil {
		_ = group.Wait()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = false
	p.tick.Store(false)

	err := p.writeOutputLocked()
	if p.out != nil {
		cerr := p.out.Close()
		p.out = nil
		if err == nil {
			err = cerr
		}
	}
	p.rt.log.Debugw("profiler stopped", "samples", len(p.stacks))
	if err != nil {
		return &IOError{Op: "profiler stop", Err: err}
	}
	return nil
}

// writeOutputLocked renders §6's text format. Called with p.mu held.
func (p *Profiler) writeOutputLocked() error {
	w := bufio.NewWriter(p.out)

	var header string
	if p.mem {
		header += "memory profiling: "
	}
	if p.line {
		header += "line profiling: "
	}
	header += fmt.Sprintf("sample.interval=%d\n", p.intervalNS/1000)
	if _, err := w.WriteString(header); err != nil {
		return err
	}

	if p.line {
		seen := map[string]bool{}
		for _, s := range p.stacks {
			for _, f := range s.frames {
				if !f.haveFileLine || seen[f.file] {
					continue
				}
				seen[f.file] = true
				p.files = append(p.files, f.file)
				p.fileIx[f.file] = len(p.files)
			}
		}
		for i, path := range p.files {
			if _, err := fmt.Fprintf(w, "#File %d: %s\n", i+1, path); err != nil {
				return err
			}
		}
	}

	for _, s := range p.stacks {
		var line string
		if p.mem {
			line += fmt.Sprintf(":%d:%d:%d:%d:", s.mem.largeV, s.mem.smallV, s.mem.nodes, s.mem.copied)
		} else {
			line += ":0:0:0:0:"
		}
		first := true
		for _, f := range s.frames {
			if first && p.line && f.haveFileLine {
				if ix, ok := p.fileIx[f.file]; ok {
					line += fmt.Sprintf(" %d#%d", ix, f.line)
				}
			}
			line += fmt.Sprintf(" %q", f.functionName)
			first = false
		}
		line += "\n"
		if _, err := w.WriteString(line); err != nil {
			return err
		}
	}

	return w.Flush()
}
