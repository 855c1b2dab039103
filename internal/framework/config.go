package framework

import "time"

type SubscriberConfig struct {
	QueueName    string
	Concurrency  int           // pulling goroutines
	Timeout      time.Duration // long-poll timeout per Consume
	TTR          time.Duration // time-to-run before the queue redelivers
	Rate         time.Duration // pause between two pulls
	ErrorBackoff time.Duration
}

type ProcessorConfig struct {
	QueueName   string
	Concurrency int
	BufferSize  int
	Timeout     time.Duration // per message
}
