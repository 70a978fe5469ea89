package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"regexp"
	"strings"
	"time"

	"stanza/pkg/identity"
	"stanza/pkg/ratelimit"
	"stanza/pkg/session"
	"stanza/pkg/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type UsersRepo interface {
	GetByID(id int64) (*user.User, error)
	GetByEmail(email string) (*user.User, error)
	Add(u *user.User) (int64, error)
}

type AuthHandler struct {
	Sm       session.SessionManager
	Repo     UsersRepo
	Provider identity.Provider
	Limiter  ratelimit.Limiter
	Logger   *zap.SugaredLogger
}

type RequestLinkReq struct {
	Email *string `json:"email"`
}

type VerifyReq struct {
	Token    *string `json:"token"`
	Username *string `json:"username"`
}

type userPayload struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *userPayload `json:"user"`
}

type meResponse struct {
	User *userPayload `json:"user"`
}

func validateUsername(username *string) []*CustomError {
	v := &Validator{value: username, location: "body", field: "username"}

	err := func() *CustomError {
		if err := v.Required(); err != nil {
			return err
		}
		if err := v.MinLength(3); err != nil {
			return err
		}
		if err := v.MaxLength(50); err != nil {
			return err
		}
		if err := v.Matches(usernameRe); err != nil {
			return err
		}
		return v.Custom(func(s string) bool {
			return !strings.HasPrefix(s, "_") && !strings.HasPrefix(s, "-") &&
				!strings.HasSuffix(s, "_") && !strings.HasSuffix(s, "-")
		}, "cannot start or end with _ or -")
	}()

	return mergeErrors(err)
}

// RequestLink starts the passwordless flow. Limited per network
// address, best effort.
func (h *AuthHandler) RequestLink(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var req RequestLinkReq
	if err := json.Unmarshal(body, &req); err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	v := &Validator{value: req.Email, location: "body", field: "email"}
	emailErr := func() *CustomError {
		if err := v.Required(); err != nil {
			return err
		}
		return v.Email()
	}()
	if emailErr != nil {
		writeErrorsResponse(w, []*CustomError{emailErr}, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	allowed, err := h.Limiter.Allow(ctx, "magic-link:"+ClientIP(r))
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !allowed {
		WriteResponse(w, "too many requests, please try again later", http.StatusTooManyRequests)
		return
	}

	if err := h.Provider.IssueLink(ctx, *req.Email); err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "failed to send magic link", http.StatusInternalServerError)
		return
	}

	WriteResponse(w, "magic link sent to your email", http.StatusOK)
}

// Verify consumes the link token and binds the proven identity to a
// user row, creating it on first sight. Creation needs a username; a
// lost race on the unique email key falls back to the winner's row, so
// retries never mint a second account.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var req VerifyReq
	if err := json.Unmarshal(body, &req); err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	if req.Token == nil || *req.Token == "" {
		WriteResponse(w, "token is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := h.Provider.Verify(ctx, *req.Token)
	if err == identity.ErrInvalidToken {
		WriteResponse(w, "invalid or expired link", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	u, err := h.Repo.GetByEmail(id.Email)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if u == nil {
		u, err = h.createUser(id.Email, req.Username, w)
		if u == nil {
			if err != nil {
				h.Logger.Error(err.Error())
				WriteResponse(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}
	}

	h.writeAuthResponse(ctx, w, u)
}

// createUser writes the response itself on validation failure and
// returns (nil, nil); callers only report storage errors.
func (h *AuthHandler) createUser(email string, username *string, w http.ResponseWriter) (*user.User, error) {
	if username == nil || *username == "" {
		WriteResponse(w, "username required", http.StatusBadRequest)
		return nil, nil
	}

	if validationErrors := validateUsername(username); len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusBadRequest)
		return nil, nil
	}

	u := &user.User{Email: user.NormalizeEmail(email), Username: *username}

	id, err := h.Repo.Add(u)
	if err == user.ErrEmailTaken {
		return h.Repo.GetByEmail(email)
	}
	if err != nil {
		return nil, err
	}

	u.ID = id
	return u, nil
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, err := session.SessionFromContext(r.Context())
	if err != nil {
		WriteResponse(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.Repo.GetByID(sess.User.ID)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if u == nil {
		WriteResponse(w, "user not found", http.StatusUnauthorized)
		return
	}

	writeJSON(w, &meResponse{User: &userPayload{ID: u.ID, Email: u.Email, Username: u.Username}}, http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Sm.Destroy(ctx, w, r); err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	WriteResponse(w, "logged out", http.StatusOK)
}

func (h *AuthHandler) writeAuthResponse(ctx context.Context, w http.ResponseWriter, u *user.User) {
	sessID := uuid.New().String()
	expiresAt := time.Now().Add(session.TTL).Unix()

	token, err := h.Sm.Create(ctx, w, &session.User{ID: u.ID, Username: u.Username, Email: u.Email}, sessID, expiresAt)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, &authResponse{
		Token: token,
		User:  &userPayload{ID: u.ID, Email: u.Email, Username: u.Username},
	}, http.StatusOK)
}
