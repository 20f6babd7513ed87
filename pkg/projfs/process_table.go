package projfs

// ProcessTable is used by the dispatcher to obtain the name of the
// process that triggered an event. This name is only provided to the
// content provider for diagnostic purposes.
type ProcessTable interface {
	GetProcessName(processID int) (string, error)
}

// getTriggeringProcessName returns the name of the process that
// triggered an event. Processes may already have terminated by the
// time the event is handled, so failures yield an empty name.
func getTriggeringProcessName(processTable ProcessTable, processID int) string {
	name, err := processTable.GetProcessName(processID)
	if err != nil {
		return ""
	}
	return name
}
