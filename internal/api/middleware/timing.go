package middleware

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const timingsKey = "serverTimings"

// Timings collects named per-stage durations for one request and renders
// them as a Server-Timing header.
type Timings struct {
	mu     sync.Mutex
	stages []stage
}

type stage struct {
	name string
	dur  time.Duration
}

func (t *Timings) Observe(name string, dur time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages = append(t.stages, stage{name: name, dur: dur})
}

func (t *Timings) header() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	parts := make([]string, 0, len(t.stages))
	for _, s := range t.stages {
		parts = append(parts, fmt.Sprintf("%s;dur=%.1f", s.name, float64(s.dur.Microseconds())/1000))
	}
	return strings.Join(parts, ", ")
}

// Stage starts a named stage timer; the returned func stops it.
func Stage(c *gin.Context, name string) func() {
	t := timingsFrom(c)
	start := time.Now()
	return func() {
		t.Observe(name, time.Since(start))
	}
}

func timingsFrom(c *gin.Context) *Timings {
	if v, ok := c.Get(timingsKey); ok {
		if t, ok := v.(*Timings); ok {
			return t
		}
	}
	t := &Timings{}
	c.Set(timingsKey, t)
	return t
}

// timingWriter injects the timing headers just before the first byte of the
// response is written; after that the header map is sealed.
type timingWriter struct {
	gin.ResponseWriter
	timings  *Timings
	start    time.Time
	injected bool
}

func (w *timingWriter) inject() {
	if w.injected {
		return
	}
	w.injected = true
	if h := w.timings.header(); h != "" {
		w.Header().Set("Server-Timing", h)
	}
	w.Header().Set("X-Response-Time-Ms",
		fmt.Sprintf("%.1f", float64(time.Since(w.start).Microseconds())/1000))
}

func (w *timingWriter) WriteHeader(code int) {
	w.inject()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) Write(b []byte) (int, error) {
	w.inject()
	return w.ResponseWriter.Write(b)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.inject()
	return w.ResponseWriter.WriteString(s)
}

// TimingMiddleware attaches the stage collector and response time header.
func TimingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := timingsFrom(c)
		c.Writer = &timingWriter{ResponseWriter: c.Writer, timings: t, start: time.Now()}
		c.Next()
	}
}
