package export

// WriteError reports a failure to produce the output file. Nothing is left
// at Path when it is returned; a retry starts from scratch.
type WriteError struct {
	Path string
	Op   string // "lock", "build", "create", "encode", "commit"
	Err  error
}

func (e *WriteError) Error() string {
	return "export: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error { return e.Err }
