package social

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"apnode/internal/domain"
	"apnode/internal/logging"
	"apnode/internal/services/actor"
)

// Service implements domain.SocialService.
type Service struct {
	keys      domain.KeyService
	followers domain.FollowerStore
	now       func() time.Time
	log       *slog.Logger
}

// New returns a social service.
func New(keys domain.KeyService, followers domain.FollowerStore, log *slog.Logger) *Service {
	return &Service{
		keys:      keys,
		followers: followers,
		now:       time.Now,
		log:       logging.OrDiscard(log).With("component", "social"),
	}
}

// Follow adds actorURI to the followers of the local actor named by
// targetURI. When actorURI is itself a local actor, targetURI is also added
// to its following collection. Whether a repeated follow is collapsed
// depends on the follower store's policy.
func (s *Service) Follow(ctx context.Context, actorURI, targetURI string) error {
	const op = "social.Follow"
	actorURI, targetURI = strings.TrimSpace(actorURI), strings.TrimSpace(targetURI)
	if err := checkURI(op, "actor", actorURI); err != nil {
		return err
	}
	if err := checkURI(op, "target", targetURI); err != nil {
		return err
	}

	ep := s.keys.Endpoints()
	target, ok := ep.UsernameFromActorURI(targetURI)
	if !ok {
		return domain.Validation(op, "target %q is not an actor on this node", targetURI)
	}
	if _, err := s.keys.Actor(target); err != nil {
		return err
	}

	added, err := s.followers.AddFollower(target, actorURI)
	if err != nil {
		return err
	}

	if follower, local := ep.UsernameFromActorURI(actorURI); local {
		if _, err := s.keys.Actor(follower); err == nil {
			if _, err := s.followers.AddFollowing(follower, targetURI); err != nil {
				return err
			}
		}
	}

	s.log.Info("follow recorded", "actor", actorURI, "target", target, "added", added)
	return nil
}

// Like builds the Like activity for objectURI. Nothing is persisted.
func (s *Service) Like(ctx context.Context, actorURI, objectURI string) (domain.Activity, error) {
	const op = "social.Like"
	actorURI, objectURI = strings.TrimSpace(actorURI), strings.TrimSpace(objectURI)
	if err := checkURI(op, "actor", actorURI); err != nil {
		return domain.Activity{}, err
	}
	if err := checkURI(op, "object", objectURI); err != nil {
		return domain.Activity{}, err
	}
	act := domain.NewURIActivity(
		strings.TrimRight(actorURI, "/")+"/likes/"+uuid.NewString(),
		domain.Like, actorURI, objectURI, s.now(),
	)
	s.log.Info("like acknowledged", "actor", actorURI, "object", objectURI)
	return act, nil
}

// Followers returns the follower URIs of username.
func (s *Service) Followers(username domain.Username) ([]string, error) {
	username, err := s.local("social.Followers", username)
	if err != nil {
		return nil, err
	}
	return s.followers.Followers(username)
}

// Following returns the URIs username follows.
func (s *Service) Following(username domain.Username) ([]string, error) {
	username, err := s.local("social.Following", username)
	if err != nil {
		return nil, err
	}
	return s.followers.Following(username)
}

func (s *Service) local(op string, username domain.Username) (domain.Username, error) {
	username, err := actor.CheckUsername(op, username)
	if err != nil {
		return "", err
	}
	if _, err := s.keys.Actor(username); err != nil {
		return "", err
	}
	return username, nil
}

func checkURI(op, field, raw string) error {
	if raw == "" {
		return domain.Validation(op, "%s URI is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return domain.Validation(op, "%s %q is not an absolute URI", field, raw)
	}
	return nil
}

// Compile-time assertion that Service implements domain.SocialService.
var _ domain.SocialService = (*Service)(nil)
