package server

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"apnode/internal/domain"
)

// activityContentType is used for ActivityStreams documents.
const activityContentType = "application/activity+json"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "apnode is running\n")
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor, err := s.deps.Actors.CreateActor(domain.Username(r.PathValue("username")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	profile, err := s.deps.Actors.Profile(actor.Username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, activityContentType, profile)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.deps.Actors.Profile(domain.Username(r.PathValue("username")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activityContentType, profile)
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	s.collection(w, r, s.deps.Social.Followers, domain.Endpoints.FollowersURL)
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	s.collection(w, r, s.deps.Social.Following, domain.Endpoints.FollowingURL)
}

func (s *Server) collection(
	w http.ResponseWriter,
	r *http.Request,
	list func(domain.Username) ([]string, error),
	id func(domain.Endpoints, domain.Username) string,
) {
	username := domain.Username(r.PathValue("username")).Normalize()
	items, err := list(username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ep := s.deps.Actors.Endpoints()
	writeJSON(w, http.StatusOK, activityContentType, domain.NewOrderedCollection(id(ep, username), items))
}

type sendRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
}

type sendResponse struct {
	Message        string                `json:"message"`
	SentAt         time.Time             `json:"sentAt"`
	Status         domain.DeliveryStatus `json:"status"`
	LocalCommitted bool                  `json:"localCommitted"`
	RemoteStatus   int                   `json:"remoteStatus,omitempty"`
	Details        string                `json:"details,omitempty"`
	Activity       domain.Activity       `json:"activity"`
	Error          string                `json:"error,omitempty"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Delivery.Send(r.Context(),
		domain.Username(req.Sender), domain.Username(req.Recipient), req.Content)

	var derr *domain.DeliveryError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, "", sendResponse{
			Message:        "Message sent successfully",
			SentAt:         res.SentAt,
			Status:         res.Status,
			LocalCommitted: res.LocalCommitted,
			RemoteStatus:   res.RemoteStatus,
			Activity:       res.Activity,
		})
	case errors.As(err, &derr):
		writeJSON(w, http.StatusBadGateway, "", sendResponse{
			Message:        "Error sending message",
			SentAt:         res.SentAt,
			Status:         res.Status,
			LocalCommitted: res.LocalCommitted,
			RemoteStatus:   res.RemoteStatus,
			Details:        res.Detail,
			Activity:       res.Activity,
			Error:          err.Error(),
		})
	default:
		s.writeError(w, r, err)
	}
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Delivery.DecryptInbox(domain.Username(r.PathValue("username")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", entries)
}

func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	if !s.deps.InboxLimiter.Allow(remoteHost(r), s.now()) {
		s.deps.Metrics.Rejected("rate-limit")
		writeJSON(w, http.StatusTooManyRequests, "", errorBody{Error: "too many requests"})
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, "", errorBody{Error: err.Error()})
		return
	}
	if s.deps.Verifier != nil {
		if err := s.deps.Verifier.Verify(r, body); err != nil {
			s.deps.Metrics.Rejected("signature")
			s.log.Warn("inbound signature rejected", "path", r.URL.Path, "error", err)
			writeJSON(w, http.StatusUnauthorized, "", errorBody{Error: err.Error()})
			return
		}
	}
	entry, err := s.deps.Delivery.Receive(r.Context(), domain.Username(r.PathValue("username")), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]string{"message": "Message received", "id": entry.ID})
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	username := domain.Username(r.PathValue("username")).Normalize()
	entries, err := s.deps.Delivery.ListInbox(username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.Payload)
	}
	ep := s.deps.Actors.Endpoints()
	writeJSON(w, http.StatusOK, activityContentType, domain.NewOrderedCollection(ep.InboxURL(username), items))
}

func (s *Server) handleOutbox(w http.ResponseWriter, r *http.Request) {
	username := domain.Username(r.PathValue("username")).Normalize()
	acts, err := s.deps.Delivery.OutboxActivities(username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ep := s.deps.Actors.Endpoints()
	writeJSON(w, http.StatusOK, activityContentType, domain.NewOrderedCollection(ep.OutboxURL(username), acts))
}

type objectRequest struct {
	Actor  string `json:"actor"`
	Object string `json:"object"`
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	var req objectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Social.Follow(r.Context(), req.Actor, req.Object); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]string{"message": "Follow recorded"})
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	var req objectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	act, err := s.deps.Social.Like(r.Context(), req.Actor, req.Object)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activityContentType, act)
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		return domain.Validation("http.decode", "invalid JSON body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, contentType string, v any) {
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
