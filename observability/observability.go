package observability

// Logger is the logging contract accepted by the conversion engine.
// Implementations adapt whatever logging framework the host application
// uses; the library never logs through a global.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is a typed key/value pair attached to a log entry.
type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type float64Field struct {
	key string
	val float64
}

func (f float64Field) Key() string        { return f.key }
func (f float64Field) Value() interface{} { return f.val }

type boolField struct {
	key string
	val bool
}

func (f boolField) Key() string        { return f.key }
func (f boolField) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field          { return stringField{key, value} }
func Int(key string, value int) Field         { return intField{key, value} }
func Float64(key string, value float64) Field { return float64Field{key, value} }
func Bool(key string, value bool) Field       { return boolField{key, value} }
func Error(key string, err error) Field       { return errorField{key, err} }

// NopLogger discards everything. It is the default when no logger is
// configured.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// Standard metric names emitted by the engine.
const (
	MetricPageCount     = "convert.pages.count"
	MetricPageDuration  = "convert.page.duration"
	MetricTableCount    = "convert.tables.count"
	MetricMathSpanCount = "convert.math.spans"
	MetricGarbledPages  = "convert.pages.garbled"
	MetricPageFailures  = "convert.pages.failed"
)
