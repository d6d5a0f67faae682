package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"lingolink/internal/config"
	"lingolink/internal/kafka"
	"lingolink/internal/models"
	"lingolink/internal/storage"

	"gorm.io/gorm"
)

var (
	ErrFriendRequestSelf     = errors.New("不能添加自己为好友")
	ErrRecipientNotFound     = errors.New("接收用户不存在")
	ErrAlreadyFriends        = errors.New("你们已经是好友了")
	ErrRequestAlreadyPending = errors.New("已存在待处理的好友请求")
	ErrUsersAlreadyConnected = errors.New("你们之间的好友请求已被接受")
	ErrFriendRequestNotFound = errors.New("好友请求不存在")
	ErrNotRecipientOfRequest = errors.New("您不是此好友请求的接收者")
	ErrRequestAlreadyHandled = errors.New("该好友请求已被处理")
)

// 推荐列表的最大返回数量
const recommendationLimit = 50

// FriendEventType 标识好友事件的类型。
type FriendEventType string

const (
	FriendEventRequestSent     FriendEventType = "friend_request.sent"
	FriendEventRequestAccepted FriendEventType = "friend_request.accepted"
)

// FriendEvent defines the structure of friend lifecycle events published to
// Kafka after a transaction commits. Delivery is best effort and never part
// of the database transaction.
type FriendEvent struct {
	Type            FriendEventType `json:"type"`
	RequestID       uint            `json:"requestId"`
	RequesterUserID uint            `json:"requesterUserId"`
	RecipientUserID uint            `json:"recipientUserId"`
	Timestamp       time.Time       `json:"timestamp"`
}

// TargetUserID 返回应当收到该事件推送的用户。
func (e *FriendEvent) TargetUserID() uint {
	if e.Type == FriendEventRequestAccepted {
		return e.RequesterUserID
	}
	return e.RecipientUserID
}

// FriendRequestInbox groups the two request lists returned together.
type FriendRequestInbox struct {
	IncomingReqs []*models.FriendRequestWithRequester `json:"incomingReqs"`
	AcceptedReqs []*models.AcceptedFriendRequest      `json:"acceptedReqs"`
}

// FriendService 定义好友关系与好友请求生命周期的服务接口。
type FriendService interface {
	GetRecommendedUsers(ctx context.Context, userID uint) ([]*models.UserSummary, error)
	GetFriends(ctx context.Context, userID uint) ([]*models.UserSummary, error)
	SendFriendRequest(ctx context.Context, requesterID, recipientID uint) (*models.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, recipientUserID, requestID uint) error
	GetFriendRequests(ctx context.Context, userID uint) (*FriendRequestInbox, error)
	GetOutgoingFriendRequests(ctx context.Context, userID uint) ([]*models.FriendRequestWithRecipient, error)
}

type friendService struct {
	txManager      storage.TxManager
	userRepo       storage.UserRepository
	friendReqRepo  storage.FriendRequestRepository
	friendshipRepo storage.FriendshipRepository
	producer       kafka.MessageProducer // may be nil; events are then skipped
	kafkaCfg       config.KafkaConfig
}

// NewFriendService creates a new FriendService instance.
func NewFriendService(
	txManager storage.TxManager,
	userRepo storage.UserRepository,
	friendReqRepo storage.FriendRequestRepository,
	friendshipRepo storage.FriendshipRepository,
	producer kafka.MessageProducer,
	kafkaCfg config.KafkaConfig,
) FriendService {
	return &friendService{
		txManager:      txManager,
		userRepo:       userRepo,
		friendReqRepo:  friendReqRepo,
		friendshipRepo: friendshipRepo,
		producer:       producer,
		kafkaCfg:       kafkaCfg,
	}
}

// GetRecommendedUsers 返回可以向其发送好友请求的候选用户：
// 已完成引导、非本人、且不在当前好友列表中。
func (s *friendService) GetRecommendedUsers(ctx context.Context, userID uint) ([]*models.UserSummary, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("获取当前用户失败: %w", err)
	}

	friendIDs, err := s.friendshipRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取好友列表失败: %w", err)
	}

	recommended, err := s.userRepo.GetRecommended(ctx, userID, friendIDs, recommendationLimit)
	if err != nil {
		return nil, fmt.Errorf("获取推荐用户失败: %w", err)
	}
	if recommended == nil {
		recommended = []*models.UserSummary{}
	}
	return recommended, nil
}

// GetFriends 返回当前用户好友的摘要信息，没有好友时返回空列表。
func (s *friendService) GetFriends(ctx context.Context, userID uint) ([]*models.UserSummary, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("获取当前用户失败: %w", err)
	}

	friendIDs, err := s.friendshipRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取好友列表失败: %w", err)
	}
	if len(friendIDs) == 0 {
		return []*models.UserSummary{}, nil
	}

	friends, err := s.userRepo.GetSummariesByIDs(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("获取好友信息失败: %w", err)
	}
	return friends, nil
}

// SendFriendRequest 在一个事务内完成所有前置检查和请求插入：
// 要么所有检查基于一致的快照并且插入成功，要么什么都不落库。
func (s *friendService) SendFriendRequest(ctx context.Context, requesterID, recipientID uint) (*models.FriendRequest, error) {
	if requesterID == recipientID {
		return nil, ErrFriendRequestSelf
	}

	var created *models.FriendRequest
	txErr := s.txManager.WithinTx(ctx, func(repos storage.TxRepos) error {
		// 1. Both users must exist
		if _, err := repos.Users.GetByID(ctx, requesterID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("检查请求用户时出错: %w", err)
		}
		if _, err := repos.Users.GetByID(ctx, recipientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipientNotFound
			}
			return fmt.Errorf("检查接收用户时出错: %w", err)
		}

		// 2. Must not already be friends
		areFriends, err := repos.Friendships.AreUsersFriends(ctx, requesterID, recipientID)
		if err != nil {
			return fmt.Errorf("检查好友关系时出错: %w", err)
		}
		if areFriends {
			return ErrAlreadyFriends
		}

		// 3. No existing request in either direction, any status
		existing, err := repos.FriendRequests.FindBetweenUsers(ctx, requesterID, recipientID)
		if err != nil {
			return fmt.Errorf("检查现有请求时出错: %w", err)
		}
		if existing != nil {
			if existing.Status == models.FriendRequestStatusPending {
				return ErrRequestAlreadyPending
			}
			return ErrUsersAlreadyConnected
		}

		// 4. Insert. The unique index on the canonical pair backs up the
		// check above under weaker isolation levels.
		request := &models.FriendRequest{
			RequesterUserID: requesterID,
			RecipientUserID: recipientID,
			Status:          models.FriendRequestStatusPending,
		}
		if err := repos.FriendRequests.Create(ctx, request); err != nil {
			return fmt.Errorf("创建好友请求失败: %w", err)
		}
		created = request
		return nil // Commit transaction
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publishFriendEvent(ctx, &FriendEvent{
		Type:            FriendEventRequestSent,
		RequestID:       created.ID,
		RequesterUserID: requesterID,
		RecipientUserID: recipientID,
		Timestamp:       time.Now(),
	})
	return created, nil
}

// AcceptFriendRequest 校验并接受一个待处理的好友请求。
// 状态变更和好友关系写入在同一个事务内完成，任何失败都会整体回滚。
func (s *friendService) AcceptFriendRequest(ctx context.Context, recipientUserID, requestID uint) error {
	var accepted *models.FriendRequest
	txErr := s.txManager.WithinTx(ctx, func(repos storage.TxRepos) error {
		// 1. Retrieve the friend request
		request, err := repos.FriendRequests.GetRequestByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFriendRequestNotFound
			}
			return fmt.Errorf("检索好友请求失败: %w", err)
		}

		// 2. Validate the request
		if request.RecipientUserID != recipientUserID {
			return ErrNotRecipientOfRequest
		}
		if request.Status != models.FriendRequestStatusPending {
			return ErrRequestAlreadyHandled
		}

		// 3. Update friend request status to accepted
		if err := repos.FriendRequests.UpdateRequestStatus(ctx, requestID, models.FriendRequestStatusAccepted); err != nil {
			return fmt.Errorf("更新好友请求状态失败: %w", err)
		}

		// 4. Materialize the friendship. Adding an already-present pair is a
		// no-op, not an error.
		areFriends, err := repos.Friendships.AreUsersFriends(ctx, request.RequesterUserID, request.RecipientUserID)
		if err != nil {
			return fmt.Errorf("检查好友关系时出错: %w", err)
		}
		if !areFriends {
			friendship := &models.Friendship{
				UserID1: request.RequesterUserID,
				UserID2: request.RecipientUserID,
			}
			friendship.EnsureCanonicalOrder()
			if err := repos.Friendships.Create(ctx, friendship); err != nil {
				return fmt.Errorf("创建好友关系失败: %w", err)
			}
		}

		accepted = request
		return nil // Commit transaction
	})
	if txErr != nil {
		return txErr
	}

	s.publishFriendEvent(ctx, &FriendEvent{
		Type:            FriendEventRequestAccepted,
		RequestID:       requestID,
		RequesterUserID: accepted.RequesterUserID,
		RecipientUserID: accepted.RecipientUserID,
		Timestamp:       time.Now(),
	})
	return nil
}

// GetFriendRequests 返回当前用户的收件箱：待处理的入站请求，
// 以及其参与的所有已接受请求。
func (s *friendService) GetFriendRequests(ctx context.Context, userID uint) (*FriendRequestInbox, error) {
	inbox := &FriendRequestInbox{
		IncomingReqs: []*models.FriendRequestWithRequester{},
		AcceptedReqs: []*models.AcceptedFriendRequest{},
	}

	pending, err := s.friendReqRepo.GetPendingRequestsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取待处理好友请求失败: %w", err)
	}
	for _, req := range pending {
		requester, err := s.userRepo.GetSummaryByID(ctx, req.RequesterUserID)
		if err != nil {
			log.Printf("获取请求 %d 的发送者 %d 信息失败: %v", req.ID, req.RequesterUserID, err)
			continue
		}
		inbox.IncomingReqs = append(inbox.IncomingReqs, &models.FriendRequestWithRequester{
			FriendRequest: req,
			Requester:     requester,
		})
	}

	acceptedReqs, err := s.friendReqRepo.GetAcceptedRequestsInvolvingUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取已接受好友请求失败: %w", err)
	}
	for _, req := range acceptedReqs {
		// 任一方无法解析（例如用户已被删除）时丢弃该条目，这是防御性
		// 过滤而不是错误。
		requester, err := s.userRepo.GetContactByID(ctx, req.RequesterUserID)
		if err != nil {
			continue
		}
		recipient, err := s.userRepo.GetContactByID(ctx, req.RecipientUserID)
		if err != nil {
			continue
		}
		inbox.AcceptedReqs = append(inbox.AcceptedReqs, &models.AcceptedFriendRequest{
			FriendRequest: req,
			Requester:     requester,
			Recipient:     recipient,
		})
	}

	return inbox, nil
}

// GetOutgoingFriendRequests 返回当前用户发出的所有待处理请求。
func (s *friendService) GetOutgoingFriendRequests(ctx context.Context, userID uint) ([]*models.FriendRequestWithRecipient, error) {
	outgoing, err := s.friendReqRepo.GetPendingRequestsFromUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取发出的好友请求失败: %w", err)
	}

	result := []*models.FriendRequestWithRecipient{}
	for _, req := range outgoing {
		recipient, err := s.userRepo.GetSummaryByID(ctx, req.RecipientUserID)
		if err != nil {
			log.Printf("获取请求 %d 的接收者 %d 信息失败: %v", req.ID, req.RecipientUserID, err)
			continue
		}
		result = append(result, &models.FriendRequestWithRecipient{
			FriendRequest: req,
			Recipient:     recipient,
		})
	}
	return result, nil
}

// publishFriendEvent publishes a friend lifecycle event after a successful
// commit. Failures are logged, never surfaced: notification delivery must not
// fail the API call that already committed.
func (s *friendService) publishFriendEvent(ctx context.Context, event *FriendEvent) {
	if s.producer == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("序列化好友事件失败: %v", err)
		return
	}

	key := []byte(fmt.Sprintf("%d-%d", event.RequesterUserID, event.RecipientUserID))
	if err := s.producer.SendMessage(ctx, s.kafkaCfg.FriendEventTopic, key, payload); err != nil {
		log.Printf("发送好友事件到 topic %s 失败: %v", s.kafkaCfg.FriendEventTopic, err)
	}
}
