package logging

import "sync"

// Record is one captured log call.
type Record struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// Recorder is an in-memory Logger for tests that assert on emitted entries.
type Recorder struct {
	mu      *sync.Mutex
	records *[]Record
	fields  []Field
	level   *Level
}

// NewRecorder creates a recorder capturing every level.
func NewRecorder() *Recorder {
	level := DebugLevel
	return &Recorder{mu: &sync.Mutex{}, records: &[]Record{}, level: &level}
}

func (r *Recorder) add(level Level, msg string, fields []Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if level < *r.level {
		return
	}
	m := make(map[string]any, len(r.fields)+len(fields))
	for _, f := range r.fields {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	*r.records = append(*r.records, Record{Level: level, Message: msg, Fields: m})
}

func (r *Recorder) Debug(msg string, fields ...Field) { r.add(DebugLevel, msg, fields) }
func (r *Recorder) Info(msg string, fields ...Field)  { r.add(InfoLevel, msg, fields) }
func (r *Recorder) Warn(msg string, fields ...Field)  { r.add(WarnLevel, msg, fields) }
func (r *Recorder) Error(msg string, fields ...Field) { r.add(ErrorLevel, msg, fields) }

func (r *Recorder) With(fields ...Field) Logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	merged := append(append([]Field{}, r.fields...), fields...)
	return &Recorder{mu: r.mu, records: r.records, fields: merged, level: r.level}
}

func (r *Recorder) SetLevel(level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.level = level
}

func (r *Recorder) GetLevel() Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.level
}

// Records returns a snapshot of captured entries.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), *r.records...)
}

// Find returns captured entries with the given message.
func (r *Recorder) Find(msg string) []Record {
	var out []Record
	for _, rec := range r.Records() {
		if rec.Message == msg {
			out = append(out, rec)
		}
	}
	return out
}
