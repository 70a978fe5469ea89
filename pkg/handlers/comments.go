package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"stanza/pkg/comments"
	"stanza/pkg/posts"
	"stanza/pkg/session"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type CommentHandler struct {
	CommentsRepo CommentsRepo
	PostsRepo    PostsRepo
	Logger       *zap.SugaredLogger
}

type AddCommentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	Comment *comments.Comment `json:"comment"`
}

// sanitizeContent trims, then caps at the max length. Length counts
// runes, not bytes.
func sanitizeContent(in string) string {
	in = strings.TrimSpace(in)
	runes := []rune(in)
	if len(runes) > comments.MaxContentLength {
		return string(runes[:comments.MaxContentLength])
	}

	return in
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	postID, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
	if err != nil {
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var req AddCommentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	content := sanitizeContent(req.Content)
	if content == "" {
		writeErrorsResponse(w, []*CustomError{
			{Location: "body", Param: "content", Msg: "cannot be blank"},
		}, http.StatusBadRequest)
		return
	}

	sess, err := session.SessionFromContext(r.Context())
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// Liveness is checked with the write-time clock: a request racing
	// the expiry boundary is rejected, not grandfathered in.
	now := time.Now()
	if _, err := h.PostsRepo.GetByID(ctx, postID, now); err != nil {
		if err == posts.ErrNotFound {
			WriteResponse(w, "post not found", http.StatusNotFound)
			return
		}

		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	comment := &comments.Comment{
		PostID:     postID,
		AuthorID:   sess.User.ID,
		AuthorName: sess.User.Username,
		Content:    content,
		Created:    now,
	}

	id, err := h.CommentsRepo.Add(ctx, comment)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	comment.ID = id

	// The comment is already visible; a failed counter bump is an
	// inconsistency to log, not a reason to take the comment away.
	if _, err := h.PostsRepo.IncCommentCount(ctx, postID); err != nil {
		h.Logger.Errorf("comment count increment failed for post %v: %s", postID, err.Error())
	}

	writeJSON(w, &commentResponse{Comment: comment}, http.StatusCreated)
}
