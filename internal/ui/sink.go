package ui

import "webchat-client/internal/view"

// Sink is the unified interface every display surface must satisfy. Refresh
// receives the full transcript after each confirmed mutation; ShowNotice
// carries transient local notices (blocked sends, connection state);
// ShowCooldown reports remaining blocked seconds, zero meaning the send
// affordances may re-enable.
type Sink interface {
	Refresh(rows []view.Row)
	ShowNotice(text string)
	ShowCooldown(remaining int)
}

type multiSink struct {
	sinks []Sink
}

// NewMultiSink fans display updates out to each registered sink.
func NewMultiSink(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) Refresh(rows []view.Row) {
	for _, sink := range m.sinks {
		if sink != nil {
			sink.Refresh(rows)
		}
	}
}

func (m *multiSink) ShowNotice(text string) {
	for _, sink := range m.sinks {
		if sink != nil {
			sink.ShowNotice(text)
		}
	}
}

func (m *multiSink) ShowCooldown(remaining int) {
	for _, sink := range m.sinks {
		if sink != nil {
			sink.ShowCooldown(remaining)
		}
	}
}
