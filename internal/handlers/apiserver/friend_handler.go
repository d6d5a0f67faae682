package apiserver

import (
	"errors"
	"log"
	"net/http"

	"lingolink/internal/middleware"
	"lingolink/internal/services"
	"lingolink/internal/storage"

	"github.com/gorilla/mux"
)

// FriendHandler handles HTTP requests related to friends and friend requests.
type FriendHandler struct {
	friendService services.FriendService
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(fs services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: fs}
}

// RecommendedUsersHandler handles GET /api/v1/users/recommended
func (h *FriendHandler) RecommendedUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusUnauthorized)
		return
	}

	recommended, err := h.friendService.GetRecommendedUsers(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Error fetching recommended users for %d: %v", userID, err)
		writeJSONError(w, "获取推荐用户失败", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, recommended)
}

// ListFriendsHandler handles GET /api/v1/friends
func (h *FriendHandler) ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusUnauthorized)
		return
	}

	friends, err := h.friendService.GetFriends(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Error fetching friends list for user %d: %v", userID, err)
		writeJSONError(w, "获取好友列表失败", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, friends)
}

// SendFriendRequestHandler handles POST /api/v1/friend-requests/{userID}
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	recipientID, err := storage.StrToUint(vars["userID"])
	if err != nil || recipientID == 0 {
		writeJSONError(w, "无效的接收者ID格式", http.StatusBadRequest)
		return
	}

	request, err := h.friendService.SendFriendRequest(r.Context(), requesterID, recipientID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFriendRequestSelf) || errors.Is(err, services.ErrAlreadyFriends):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrRecipientNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrRequestAlreadyPending) || errors.Is(err, services.ErrUsersAlreadyConnected):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("Error sending friend request from %d to %d: %v", requesterID, recipientID, err)
			writeJSONError(w, "发送好友请求失败", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, request)
}

// AcceptFriendRequestHandler handles PUT /api/v1/friend-requests/{requestID}/accept
func (h *FriendHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	recipientUserID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	requestID, err := storage.StrToUint(vars["requestID"])
	if err != nil || requestID == 0 {
		writeJSONError(w, "无效的好友请求ID格式", http.StatusBadRequest)
		return
	}

	if err := h.friendService.AcceptFriendRequest(r.Context(), recipientUserID, requestID); err != nil {
		switch {
		case errors.Is(err, services.ErrFriendRequestNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotRecipientOfRequest):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, services.ErrRequestAlreadyHandled):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Error accepting friend request %d by user %d: %v", requestID, recipientUserID, err)
			writeJSONError(w, "处理好友请求失败", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "好友请求已接受"})
}

// ListFriendRequestsHandler handles GET /api/v1/friend-requests
func (h *FriendHandler) ListFriendRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusUnauthorized)
		return
	}

	inbox, err := h.friendService.GetFriendRequests(r.Context(), userID)
	if err != nil {
		log.Printf("Error fetching friend requests for user %d: %v", userID, err)
		writeJSONError(w, "获取好友请求失败", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, inbox)
}

// ListOutgoingRequestsHandler handles GET /api/v1/friend-requests/outgoing
func (h *FriendHandler) ListOutgoingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusUnauthorized)
		return
	}

	outgoing, err := h.friendService.GetOutgoingFriendRequests(r.Context(), userID)
	if err != nil {
		log.Printf("Error fetching outgoing friend requests for user %d: %v", userID, err)
		writeJSONError(w, "获取发出的好友请求失败", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, outgoing)
}
