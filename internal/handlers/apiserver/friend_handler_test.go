package apiserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"lingolink/internal/middleware"
	"lingolink/internal/models"
	"lingolink/internal/services"
)

// stubFriendService 是可配置返回值的 FriendService 桩实现。
type stubFriendService struct {
	recommended []*models.UserSummary
	friends     []*models.UserSummary
	sentRequest *models.FriendRequest
	inbox       *services.FriendRequestInbox
	outgoing    []*models.FriendRequestWithRecipient
	err         error
}

func (s *stubFriendService) GetRecommendedUsers(ctx context.Context, userID uint) ([]*models.UserSummary, error) {
	return s.recommended, s.err
}

func (s *stubFriendService) GetFriends(ctx context.Context, userID uint) ([]*models.UserSummary, error) {
	return s.friends, s.err
}

func (s *stubFriendService) SendFriendRequest(ctx context.Context, requesterID, recipientID uint) (*models.FriendRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sentRequest, nil
}

func (s *stubFriendService) AcceptFriendRequest(ctx context.Context, recipientUserID, requestID uint) error {
	return s.err
}

func (s *stubFriendService) GetFriendRequests(ctx context.Context, userID uint) (*services.FriendRequestInbox, error) {
	return s.inbox, s.err
}

func (s *stubFriendService) GetOutgoingFriendRequests(ctx context.Context, userID uint) ([]*models.FriendRequestWithRecipient, error) {
	return s.outgoing, s.err
}

// authedRequest 构造一个带有已认证用户上下文和路径变量的请求。
func authedRequest(method, target string, userID uint, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	req = req.WithContext(ctx)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error
}

func TestSendFriendRequestHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"self request", services.ErrFriendRequestSelf, http.StatusBadRequest},
		{"already friends", services.ErrAlreadyFriends, http.StatusBadRequest},
		{"caller not found", services.ErrUserNotFound, http.StatusNotFound},
		{"recipient not found", services.ErrRecipientNotFound, http.StatusNotFound},
		{"request already pending", services.ErrRequestAlreadyPending, http.StatusConflict},
		{"request already accepted", services.ErrUsersAlreadyConnected, http.StatusConflict},
		{"unexpected error", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewFriendHandler(&stubFriendService{err: tc.serviceErr})
			req := authedRequest(http.MethodPost, "/api/v1/friend-requests/2", 1, map[string]string{"userID": "2"})
			rr := httptest.NewRecorder()

			handler.SendFriendRequestHandler(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			if msg := decodeError(t, rr); msg == "" {
				t.Error("expected a non-empty error message")
			}
		})
	}
}

func TestSendFriendRequestHandler_Success(t *testing.T) {
	created := &models.FriendRequest{
		BaseModel:       models.BaseModel{ID: 7},
		RequesterUserID: 1,
		RecipientUserID: 2,
		Status:          models.FriendRequestStatusPending,
	}
	handler := NewFriendHandler(&stubFriendService{sentRequest: created})
	req := authedRequest(http.MethodPost, "/api/v1/friend-requests/2", 1, map[string]string{"userID": "2"})
	rr := httptest.NewRecorder()

	handler.SendFriendRequestHandler(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusCreated)
	}
	var got models.FriendRequest
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != 7 || got.Status != models.FriendRequestStatusPending {
		t.Errorf("response request = %+v, want ID=7 status=pending", got)
	}
}

func TestSendFriendRequestHandler_BadInput(t *testing.T) {
	handler := NewFriendHandler(&stubFriendService{})

	t.Run("invalid recipient ID", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/api/v1/friend-requests/abc", 1, map[string]string{"userID": "abc"})
		rr := httptest.NewRecorder()
		handler.SendFriendRequestHandler(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})

	t.Run("missing auth context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/friend-requests/2", nil)
		req = mux.SetURLVars(req, map[string]string{"userID": "2"})
		rr := httptest.NewRecorder()
		handler.SendFriendRequestHandler(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
		}
	})
}

func TestAcceptFriendRequestHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"request not found", services.ErrFriendRequestNotFound, http.StatusNotFound},
		{"not the recipient", services.ErrNotRecipientOfRequest, http.StatusForbidden},
		{"already handled", services.ErrRequestAlreadyHandled, http.StatusBadRequest},
		{"unexpected error", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewFriendHandler(&stubFriendService{err: tc.serviceErr})
			req := authedRequest(http.MethodPut, "/api/v1/friend-requests/7/accept", 2, map[string]string{"requestID": "7"})
			rr := httptest.NewRecorder()

			handler.AcceptFriendRequestHandler(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}

func TestAcceptFriendRequestHandler_InvalidRequestID(t *testing.T) {
	handler := NewFriendHandler(&stubFriendService{})
	req := authedRequest(http.MethodPut, "/api/v1/friend-requests/zero/accept", 2, map[string]string{"requestID": "zero"})
	rr := httptest.NewRecorder()

	handler.AcceptFriendRequestHandler(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRecommendedUsersHandler(t *testing.T) {
	recommended := []*models.UserSummary{
		{ID: 3, Username: "carol"},
		{ID: 5, Username: "erin"},
	}
	handler := NewFriendHandler(&stubFriendService{recommended: recommended})
	req := authedRequest(http.MethodGet, "/api/v1/users/recommended", 1, nil)
	rr := httptest.NewRecorder()

	handler.RecommendedUsersHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var got []*models.UserSummary
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 2 || got[0].Username != "carol" {
		t.Errorf("unexpected recommended list: %+v", got)
	}
}

func TestListFriendsHandler(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		handler := NewFriendHandler(&stubFriendService{err: services.ErrUserNotFound})
		req := authedRequest(http.MethodGet, "/api/v1/friends", 99, nil)
		rr := httptest.NewRecorder()

		handler.ListFriendsHandler(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
		}
	})

	t.Run("empty list serializes as array", func(t *testing.T) {
		handler := NewFriendHandler(&stubFriendService{friends: []*models.UserSummary{}})
		req := authedRequest(http.MethodGet, "/api/v1/friends", 1, nil)
		rr := httptest.NewRecorder()

		handler.ListFriendsHandler(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
		}
		if body := rr.Body.String(); body != "[]\n" {
			t.Errorf("body = %q, want empty JSON array", body)
		}
	})
}

func TestListFriendRequestsHandler(t *testing.T) {
	inbox := &services.FriendRequestInbox{
		IncomingReqs: []*models.FriendRequestWithRequester{
			{
				FriendRequest: models.FriendRequest{
					BaseModel:       models.BaseModel{ID: 4},
					RequesterUserID: 2,
					RecipientUserID: 1,
					Status:          models.FriendRequestStatusPending,
				},
				Requester: &models.UserSummary{ID: 2, Username: "bob"},
			},
		},
		AcceptedReqs: []*models.AcceptedFriendRequest{},
	}
	handler := NewFriendHandler(&stubFriendService{inbox: inbox})
	req := authedRequest(http.MethodGet, "/api/v1/friend-requests", 1, nil)
	rr := httptest.NewRecorder()

	handler.ListFriendRequestsHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var got struct {
		IncomingReqs []json.RawMessage `json:"incomingReqs"`
		AcceptedReqs []json.RawMessage `json:"acceptedReqs"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got.IncomingReqs) != 1 {
		t.Errorf("incomingReqs length = %d, want 1", len(got.IncomingReqs))
	}
	if got.AcceptedReqs == nil {
		t.Error("acceptedReqs should serialize as an empty array, not null")
	}
}

func TestListOutgoingRequestsHandler(t *testing.T) {
	outgoing := []*models.FriendRequestWithRecipient{
		{
			FriendRequest: models.FriendRequest{
				BaseModel:       models.BaseModel{ID: 9},
				RequesterUserID: 1,
				RecipientUserID: 2,
				Status:          models.FriendRequestStatusPending,
			},
			Recipient: &models.UserSummary{ID: 2, Username: "bob"},
		},
	}
	handler := NewFriendHandler(&stubFriendService{outgoing: outgoing})
	req := authedRequest(http.MethodGet, "/api/v1/friend-requests/outgoing", 1, nil)
	rr := httptest.NewRecorder()

	handler.ListOutgoingRequestsHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var got []*models.FriendRequestWithRecipient
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].Recipient == nil || got[0].Recipient.Username != "bob" {
		t.Errorf("unexpected outgoing list: %+v", got)
	}
}
