package models

// FriendRequestStatus 定义好友请求的状态
type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
)

// FriendRequest 代表一个好友请求记录。
// PairLowID/PairHighID 保存规范化排序后的用户对，配合唯一索引保证
// 任意一对用户之间最多只存在一条请求记录（不论方向）。
type FriendRequest struct {
	BaseModel
	RequesterUserID uint                `gorm:"not null;index" json:"requesterUserId"` // 请求发送者
	RecipientUserID uint                `gorm:"not null;index" json:"recipientUserId"` // 请求接收者
	Status          FriendRequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	PairLowID  uint `gorm:"not null;uniqueIndex:idx_friend_request_pair" json:"-"`
	PairHighID uint `gorm:"not null;uniqueIndex:idx_friend_request_pair" json:"-"`
}

// EnsurePairOrder fills the canonical pair columns from requester/recipient.
// This should be called before creating a FriendRequest record.
func (r *FriendRequest) EnsurePairOrder() {
	r.PairLowID, r.PairHighID = r.RequesterUserID, r.RecipientUserID
	if r.PairLowID > r.PairHighID {
		r.PairLowID, r.PairHighID = r.PairHighID, r.PairLowID
	}
}

// FriendRequestWithRequester is a DTO that includes friend request details
// along with summary information about the user who sent the request.
// Useful for API responses for listing incoming requests.
type FriendRequestWithRequester struct {
	FriendRequest
	Requester *UserSummary `json:"requester"`
}

// FriendRequestWithRecipient is the outgoing-list counterpart: the request
// plus summary information about the user it was sent to.
type FriendRequestWithRecipient struct {
	FriendRequest
	Recipient *UserSummary `json:"recipient"`
}

// AcceptedFriendRequest expands both parties of an accepted request to their
// name+avatar projection.
type AcceptedFriendRequest struct {
	FriendRequest
	Requester *UserContact `json:"requester"`
	Recipient *UserContact `json:"recipient"`
}
