package magento2

// CachedOrderInput is the order-submission input cached by the upstream step.
// Only order.order_id_unique is read here.
type CachedOrderInput Document

// CoverResponse is COVER's answer to the order submission. Only
// order.error.error_code and order.error.error_msg are read here.
type CoverResponse Document

// StatusUpdate is the body of POST /rest/V1/orders/{id}/comments. Field names
// are the platform's contract.
type StatusUpdate struct {
	EntryID            int    `json:"entry_id"`
	CreatedAt          string `json:"created_at"`
	Comment            string `json:"comment"`
	Status             string `json:"status"`
	IsCustomerNotified int    `json:"is_customer_notified"`
}

// SyncRequest is everything one status sync needs.
type SyncRequest struct {
	ShopURL       string
	ShopAuthToken string
	CachedInput   CachedOrderInput
	CoverResponse CoverResponse
}

// PipelineState is owned by a single Sync call and handed back to the caller.
type PipelineState struct {
	OrderIDUnique string
	Magento2JSON  string

	// UpsertFailed starts out true and is cleared only when delivery is
	// suppressed after the retry budget ran out; a clean delivery leaves it alone.
	UpsertFailed bool

	Outcome      Outcome
	Attempts     int
	ResponseBody string
	LastFailure  error
}

func newPipelineState() *PipelineState {
	return &PipelineState{UpsertFailed: true}
}
