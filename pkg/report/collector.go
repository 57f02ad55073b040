package report

// Collector keeps findings in memory. Tests use it to assert on exactly
// what a checker emitted.
type Collector struct {
	Messages []Message
	Findings []Finding

	lastBaseDir  string
	lastFileName string
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Accept records f.
func (c *Collector) Accept(f Finding) {
	c.lastBaseDir, c.lastFileName = f.BaseDir, f.FileName
	c.Messages = append(c.Messages, Message{Line: f.Line, Text: f.Message})
	c.Findings = append(c.Findings, f)
}

// LastFile returns the file context of the most recent finding.
func (c *Collector) LastFile() (baseDir, fileName string) {
	return c.lastBaseDir, c.lastFileName
}

// Buffer holds the findings of one file until they can be replayed into
// the shared reporter.
type Buffer struct {
	findings []Finding
}

// Accept records f.
func (b *Buffer) Accept(f Finding) {
	b.findings = append(b.findings, f)
}

// Len returns the number of buffered findings.
func (b *Buffer) Len() int {
	return len(b.findings)
}

// ReplayTo reports every buffered finding to r in emission order.
func (b *Buffer) ReplayTo(r *Reporter) {
	for _, f := range b.findings {
		r.Report(f)
	}
}

// Findings returns a copy of the buffered findings.
func (b *Buffer) Findings() []Finding {
	out := make([]Finding, len(b.findings))
	copy(out, b.findings)
	return out
}
