package jobs

const (
	TaskDownloadVideo = "download:video"
	TaskRecordAdClick = "stats:adclick"
)

type DownloadVideoPayload struct {
	JobID     string `json:"job_id"` // ULID assigned by the bot
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
	MessageID int    `json:"message_id"` // status message to edit with progress/result
	URL       string `json:"url"`
	FirstName string `json:"first_name"` // for profile registration on the worker side
	Username  string `json:"username"`
}

// RecordAdClickPayload routes ad-click events to the worker, which is the
// only process that writes the stats ledger.
type RecordAdClickPayload struct {
	AdID   string `json:"ad_id"`
	UserID int64  `json:"user_id"`
}
