package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/tomasbasham/multipartenc"
)

// profileRequest is the multipart form accepted by POST /profiles.
type profileRequest struct {
	Name     string             `multipart:"name"`
	Tags     []string           `multipart:"tags"`
	Age      *int               `multipart:"age"`
	Avatar   *multipartenc.File `multipart:"avatar,max=1048576"`
	Settings *profileSettings   `multipart:"settings,json"`
}

type profileSettings struct {
	Theme      string `json:"theme"`
	Newsletter bool   `json:"newsletter"`
}

type profileResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Tags       []string         `json:"tags"`
	Age        *int             `json:"age,omitempty"`
	AvatarSize int64            `json:"avatar_size"`
	AvatarType string           `json:"avatar_type,omitempty"`
	Settings   *profileSettings `json:"settings,omitempty"`
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	opts := append([]multipartenc.Option{multipartenc.WithLogger(s.logger)}, s.opts...)
	req, err := multipartenc.FromRequest[profileRequest](r, opts...)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := profileResponse{
		ID:       s.newID().String(),
		Name:     req.Name,
		Tags:     req.Tags,
		Age:      req.Age,
		Settings: req.Settings,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if req.Avatar != nil {
		resp.AvatarSize = req.Avatar.Size
		resp.AvatarType = req.Avatar.ContentType()
	}

	s.logger.InfoContext(r.Context(), "profile created",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("id", resp.ID),
		slog.Int("tags", len(resp.Tags)),
		slog.Int64("avatar_size", resp.AvatarSize),
	)
	writeJSON(w, http.StatusCreated, resp)
}
