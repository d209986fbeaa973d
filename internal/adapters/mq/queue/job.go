package queue

// Upload is one uploaded call log.
type Upload struct {
	Name string
	Data []byte
}

// Job asks a worker to reconcile two uploaded logs for a stored run.
type Job struct {
	RunID   string
	SourceA Upload
	SourceB Upload
	Delta   int
}
