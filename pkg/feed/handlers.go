package feed

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"picfeed/pkg/comment"
	. "picfeed/pkg/common"
	"picfeed/pkg/logger"
	"picfeed/pkg/post"
	"picfeed/pkg/reaction"
	"picfeed/pkg/sessions"
)

// Multipart overhead allowed on top of the image itself.
const formSlack = 1 << 20

type FeedHandler struct {
	Viewers       *Viewers
	MaxImageBytes int64
}

func NewFeedHandler(v *Viewers, maxImageBytes int64) *FeedHandler {
	return &FeedHandler{
		Viewers:       v,
		MaxImageBytes: maxImageBytes,
	}
}

type feedResp struct {
	View
	State     *reaction.State   `json:"state,omitempty"`
	PostId    post.PostId       `json:"postId,omitempty"`
	CommentId comment.CommentId `json:"commentId,omitempty"`
}

type commentReq struct {
	Comment string `json:"comment"`
}

func (fh *FeedHandler) viewer(w http.ResponseWriter, r *http.Request) (*Viewer, bool) {
	u, err := sessions.GetAuthUser(r.Context())
	if err != nil {
		logger.Log(r.Context()).Errorf("feed/handlers: %v", err)
		WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return nil, false
	}
	return fh.Viewers.Get(u.Id), true
}

// Feed serves GET /api/feed. With ?filter= it switches the viewer's filter
// first, otherwise it re-reads with the current one.
func (fh *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	v, ok := fh.viewer(w, r)
	if !ok {
		return
	}

	var (
		view View
		err  error
	)
	if raw, set := r.URL.Query()["filter"]; set && len(raw) > 0 {
		f, perr := ParseFilter(raw[0])
		if perr != nil {
			fh.fail(w, r, perr, "")
			return
		}
		view, err = v.Feed.Load(r.Context(), f)
	} else {
		view, err = v.Feed.Refresh(r.Context())
	}
	if err != nil {
		fh.fail(w, r, err, "failed loading feed")
		return
	}
	WriteRespJSON(w, feedResp{View: view})
}

func (fh *FeedHandler) ToggleBookmarks(w http.ResponseWriter, r *http.Request) {
	v, ok := fh.viewer(w, r)
	if !ok {
		return
	}
	view, err := v.Feed.ToggleBookmarks(r.Context())
	if err != nil {
		fh.fail(w, r, err, "failed loading feed")
		return
	}
	WriteRespJSON(w, feedResp{View: view})
}

func (fh *FeedHandler) ToggleLikes(w http.ResponseWriter, r *http.Request) {
	v, ok := fh.viewer(w, r)
	if !ok {
		return
	}
	view, err := v.Feed.ToggleLikes(r.Context())
	if err != nil {
		fh.fail(w, r, err, "failed loading feed")
		return
	}
	WriteRespJSON(w, feedResp{View: view})
}

// AddPost takes a multipart form with an `image` file and a `caption` field.
func (fh *FeedHandler) AddPost(w http.ResponseWriter, r *http.Request) {
	v, ok := fh.viewer(w, r)
	if !ok {
		return
	}

	if fh.MaxImageBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, fh.MaxImageBytes+formSlack)
	}
	if err := r.ParseMultipartForm(formSlack); err != nil {
		logger.Log(r.Context()).Errorf("feed/handlers: can't parse post form: %v", err)
		WriteMsg(w, "can't parse post form", http.StatusBadRequest)
		return
	}

	img := Image{}
	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// left empty, rejected by CreatePost
	case err != nil:
		logger.Log(r.Context()).Errorf("feed/handlers: can't read image part: %v", err)
		WriteMsg(w, "can't read image", http.StatusBadRequest)
		return
	default:
		defer file.Close()
		img.Name = header.Filename
		if img.Data, err = io.ReadAll(file); err != nil {
			logger.Log(r.Context()).Errorf("feed/handlers: can't read image part: %v", err)
			WriteMsg(w, "can't read image", http.StatusBadRequest)
			return
		}
	}

	id, err := v.Actions.CreatePost(r.Context(), v.UserId, r.FormValue("caption"), img)
	if err != nil {
		fh.fail(w, r, err, "failed creating post")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	WriteRespJSON(w, feedResp{View: v.Feed.View(), PostId: id})
}

func (fh *FeedHandler) Like(w http.ResponseWriter, r *http.Request) {
	fh.toggle(w, r, reaction.Like)
}

func (fh *FeedHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	fh.toggle(w, r, reaction.Bookmark)
}

func (fh *FeedHandler) toggle(w http.ResponseWriter, r *http.Request, kind reaction.Kind) {
	v, ok := fh.viewer(w, r)
	if !ok {
		return
	}
	postId := post.PostId(mux.Vars(r)["post_id"])

	toggle := v.Actions.ToggleLike
	if kind == reaction.Bookmark {
		toggle = v.Actions.ToggleBookmark
	}
	state, err := toggle(r.Context(), postId, v.UserId)
	if err != nil {
		fh.fail(w, r, err, "failed updating "+string(kind))
		return
	}
	WriteRespJSON(w, feedResp{View: v.Feed.View(), State: &state})
}

func (fh *FeedHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	v, ok := fh.viewer(w, r)
	if !ok {
		return
	}
	postId := post.PostId(mux.Vars(r)["post_id"])

	req := new(commentReq)
	if err := ParseReqBody(r.Body, req); err != nil {
		logger.Log(r.Context()).Errorf("feed/handlers: can't parse comment from request body: %v", err)
		WriteMsg(w, "can't parse comment", http.StatusBadRequest)
		return
	}

	id, err := v.Actions.AddComment(r.Context(), postId, v.UserId, req.Comment)
	if err != nil {
		fh.fail(w, r, err, "failed adding comment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	WriteRespJSON(w, feedResp{View: v.Feed.View(), CommentId: id})
}

func (fh *FeedHandler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case IsValidation(err):
		logger.Log(r.Context()).Infof("feed/handlers: rejected request: %v", err)
		WriteMsg(w, err.Error(), http.StatusBadRequest)
	case IsNetwork(err):
		WriteMsg(w, msg, http.StatusBadGateway)
	default:
		logger.Log(r.Context()).Errorf("feed/handlers: %s: %v", msg, err)
		WriteMsg(w, msg, http.StatusInternalServerError)
	}
}
