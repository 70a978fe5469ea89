package handlers

import (
	"context"
	"io/ioutil"
	"net/http"
	"stanza/pkg/blob"
	"stanza/pkg/comments"
	"stanza/pkg/expiry"
	"stanza/pkg/posts"
	"stanza/pkg/session"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxUploadBytes       = 10 << 20
)

type PostsRepo interface {
	GetLive(ctx context.Context, now time.Time) ([]*posts.Post, error)
	GetByID(ctx context.Context, id interface{}, now time.Time) (*posts.Post, error)
	Add(ctx context.Context, p *posts.Post) (interface{}, error)
	IncVotes(ctx context.Context, id interface{}) (int64, error)
	IncCommentCount(ctx context.Context, id interface{}) (int64, error)
	ParseID(in string) (interface{}, error)
}

type CommentsRepo interface {
	GetByPostID(ctx context.Context, id interface{}) ([]*comments.Comment, error)
	Add(ctx context.Context, comment *comments.Comment) (interface{}, error)
}

type PostHandler struct {
	PostsRepo    PostsRepo
	CommentsRepo CommentsRepo
	Images       blob.Store
	Logger       *zap.SugaredLogger
}

type postsResponse struct {
	Posts []*posts.Post `json:"posts"`
}

type postResponse struct {
	Post *posts.Post `json:"post"`
}

type postWithCommentsResponse struct {
	Post     *posts.Post         `json:"post"`
	Comments []*comments.Comment `json:"comments"`
}

// GetAll lists the live set. Sorting is a presentation choice, so the
// ?sort= parameter picks it per request; default is newest first.
func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	live, err := h.PostsRepo.GetLive(ctx, time.Now())
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if opt := r.URL.Query().Get("sort"); opt != "" {
		posts.Sort(live, posts.SortOption(opt))
	}

	writeJSON(w, &postsResponse{Posts: live}, http.StatusOK)
}

func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
	if err != nil {
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	post, err := h.PostsRepo.GetByID(ctx, id, time.Now())
	if err == posts.ErrNotFound {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	thread, err := h.CommentsRepo.GetByPostID(ctx, post.ID)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, &postWithCommentsResponse{Post: post, Comments: thread}, http.StatusOK)
}

func validatePostInput(title, description *string) []*CustomError {
	t := &Validator{value: title, location: "body", field: "title"}
	titleErr := func() *CustomError {
		if err := t.Required(); err != nil {
			return err
		}
		if err := t.Empty(); err != nil {
			return err
		}
		return t.MaxLength(maxTitleLength)
	}()

	d := &Validator{value: description, location: "body", field: "description"}
	descriptionErr := func() *CustomError {
		if err := d.Required(); err != nil {
			return err
		}
		if err := d.Empty(); err != nil {
			return err
		}
		return d.MaxLength(maxDescriptionLength)
	}()

	return mergeErrors(titleErr, descriptionErr)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))

	validationErrors := validatePostInput(&title, &description)
	if len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusBadRequest)
		return
	}

	sess, err := session.SessionFromContext(r.Context())
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now()

	post := &posts.Post{
		Title:       title,
		Description: description,
		AuthorID:    sess.User.ID,
		AuthorName:  sess.User.Username,
		Created:     now,
		Expires:     expiry.At(now),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if file, header, ferr := r.FormFile("image"); ferr == nil {
		defer file.Close()

		if h.Images == nil {
			WriteResponse(w, "image uploads are not enabled", http.StatusBadRequest)
			return
		}

		data, rerr := ioutil.ReadAll(file)
		if rerr != nil {
			h.Logger.Error(rerr.Error())
			WriteResponse(w, "failed to read image", http.StatusBadRequest)
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/jpeg"
		}

		url, uerr := h.Images.Put(ctx, blob.ImageKey(sess.User.ID, header.Filename, now), contentType, data)
		if uerr != nil {
			h.Logger.Error(uerr.Error())
			WriteResponse(w, "failed to upload image", http.StatusInternalServerError)
			return
		}

		post.ImageURL = url
	}

	id, err := h.PostsRepo.Add(ctx, post)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	post.ID = id

	writeJSON(w, &postResponse{Post: post}, http.StatusCreated)
}
