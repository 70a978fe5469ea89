package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"stanza/pkg/posts"
	"stanza/pkg/votes"
	"time"

	"go.uber.org/zap"
)

type VotesRepo interface {
	HasVoted(ctx context.Context, postID interface{}, deviceID string) (bool, error)
	Add(ctx context.Context, v *votes.Vote) error
	IDsByDevice(ctx context.Context, deviceID string) ([]string, error)
}

type VoteHandler struct {
	VotesRepo VotesRepo
	PostsRepo PostsRepo
	Logger    *zap.SugaredLogger
}

type CastVoteRequest struct {
	PostID   string `json:"postId"`
	DeviceID string `json:"deviceId"`
}

type castVoteResponse struct {
	Success bool  `json:"success"`
	Votes   int64 `json:"votes"`
}

type votedPostsResponse struct {
	PostIDs []string `json:"postIds"`
}

// Cast is device-scoped, not user-scoped: no session needed. The
// ledger's unique key is the only arbiter under concurrency.
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var req CastVoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	if req.PostID == "" || req.DeviceID == "" {
		WriteResponse(w, "post id and device id are required", http.StatusBadRequest)
		return
	}

	postID, err := h.PostsRepo.ParseID(req.PostID)
	if err != nil {
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// Expired posts do not take votes; absent and expired look alike.
	if _, err := h.PostsRepo.GetByID(ctx, postID, time.Now()); err != nil {
		if err == posts.ErrNotFound {
			WriteResponse(w, "post not found", http.StatusNotFound)
			return
		}

		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	vote := &votes.Vote{
		PostID:    postID,
		DeviceID:  req.DeviceID,
		IPAddress: ClientIP(r),
		Created:   time.Now(),
	}

	err = h.VotesRepo.Add(ctx, vote)
	if err == votes.ErrAlreadyVoted {
		WriteResponse(w, "already voted on this post", http.StatusConflict)
		return
	}
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	count, err := h.PostsRepo.IncVotes(ctx, postID)
	if err != nil {
		// The vote row landed; surface the failure but leave the row.
		h.Logger.Errorf("vote count increment failed for post %v: %s", postID, err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, &castVoteResponse{Success: true, Votes: count}, http.StatusOK)
}

// ByDevice lets a client rebuild its local voted-set cache from the
// ledger.
func (h *VoteHandler) ByDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		WriteResponse(w, "device id is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	ids, err := h.VotesRepo.IDsByDevice(ctx, deviceID)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, &votedPostsResponse{PostIDs: ids}, http.StatusOK)
}
