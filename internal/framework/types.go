package framework

// Message is a queue message as it travels from subscriber to processor.
type Message struct {
	ID       string
	Queue    string
	Data     []byte
	Attempts int
}
