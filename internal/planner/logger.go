package planner

// Logf receives planner progress messages. It is a no-op until SetLogger is called.
var Logf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces Logf. Passing nil mutes the planner.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
