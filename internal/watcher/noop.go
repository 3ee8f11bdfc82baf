package watcher

// Noop satisfies Watcher without registering anything or ever producing
// events. It is the graceful-degradation backend spec §4.6/§9 calls for:
// "a backend that returns no events or no registrations is acceptable —
// the system degrades to manual rescan only".
type Noop struct{}

func (Noop) Add(string) error    { return nil }
func (Noop) ReadEvents() []Event { return nil }
func (Noop) Close() error        { return nil }
