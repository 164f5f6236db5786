package logging

import "time"

// TimedOperation times one analysis phase and logs it when the phase ends.
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}

// StartTimer starts timing a phase. fields are attached to the final line.
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// Elapsed returns the time since the timer started.
func (t *TimedOperation) Elapsed() time.Duration {
	return time.Since(t.start)
}

// End logs msg at INFO with a latency field and returns the phase duration.
func (t *TimedOperation) End(fields ...Field) time.Duration {
	elapsed := t.Elapsed()
	t.logger.Info(t.msg, t.collect(fields, Latency(elapsed))...)
	return elapsed
}

// EndError logs msg at ERROR with the latency and err.
func (t *TimedOperation) EndError(err error) time.Duration {
	elapsed := t.Elapsed()
	t.logger.Error(t.msg, t.collect(nil, Latency(elapsed), Error(err))...)
	return elapsed
}

func (t *TimedOperation) collect(extra []Field, tail ...Field) []Field {
	all := make([]Field, 0, len(t.fields)+len(extra)+len(tail))
	all = append(all, t.fields...)
	all = append(all, extra...)
	return append(all, tail...)
}
