package models

// Notification template kinds. Dispatch is always best-effort; a failed send
// never rolls back the state transition that produced it.
const (
	NOTIFY_ACTION_REJECTED  = "action-rejected"
	NOTIFY_REWARD_CLAIMED   = "reward-claimed"
	NOTIFY_CLAIM_ALERT      = "reward-claim-admin-alert"
	NOTIFY_REWARD_APPROVED  = "reward-approved"
	NOTIFY_REWARD_REJECTED  = "reward-rejected"
	NOTIFY_REWARD_DELIVERED = "reward-delivered"
)

type NotificationPayload struct {
	UserID      int64  `json:"user_id"`
	UserEmail   string `json:"user_email"`
	UserName    string `json:"user_name"`
	RewardTitle string `json:"reward_title,omitempty"`
	ActionTitle string `json:"action_title,omitempty"`
	Level       int    `json:"level,omitempty"`
	Reason      string `json:"reason,omitempty"`
	DedupKey    string `json:"dedup_key,omitempty"`
}

type EcoTip struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Weight   int    `json:"weight"`
}
