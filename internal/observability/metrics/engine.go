package metrics

// EngineMeter adapts a process's metric set to the engine's measurement
// hooks. Both the API and the worker expose a constructor for it so the
// fallback path reports into whichever registry owns the process.
type EngineMeter struct {
	recordCacheLookup func(hit bool)
	recordFallbackRun func(source string)
}

func (m *EngineMeter) RecordCacheLookup(hit bool) {
	if m.recordCacheLookup != nil {
		m.recordCacheLookup(hit)
	}
}

func (m *EngineMeter) RecordFallbackRun(source string) {
	if m.recordFallbackRun != nil {
		m.recordFallbackRun(source)
	}
}
