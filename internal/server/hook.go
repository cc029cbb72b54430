package server

import (
	"encoding/json"
	"net/http"

	gogithub "github.com/google/go-github/v62/github"

	"github.com/tailorci/tailor/internal/github"
	"github.com/tailorci/tailor/internal/worker"
)

// hookEvent is the slice of a webhook delivery the receiver cares about.
// A hook registration ping carries "hook"; pull request events carry
// "action" and "pull_request".
type hookEvent struct {
	Action      *string               `json:"action"`
	Hook        json.RawMessage       `json:"hook"`
	Repository  *gogithub.Repository  `json:"repository"`
	PullRequest *gogithub.PullRequest `json:"pull_request"`
}

func (s *Server) handleHook(w http.ResponseWriter, r *http.Request) {
	var event hookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.log.Debug("rejecting malformed webhook payload", "error", err)
		respond(w, http.StatusBadRequest, "Failed to decode payload")
		return
	}

	if event.Hook != nil {
		s.log.Info("webhook registration ping received")
		respond(w, http.StatusOK, "Webhook registered")
		return
	}
	if event.PullRequest == nil || event.Repository == nil {
		respond(w, http.StatusOK, "Not a pull request")
		return
	}
	if event.Action != nil && *event.Action == "closed" {
		s.log.Debug("ignoring closed pull request",
			"repo", event.Repository.GetFullName(),
			"number", event.PullRequest.GetNumber())
		respond(w, http.StatusOK, "Ignoring closed pull request")
		return
	}

	owner := event.Repository.GetOwner().GetLogin()
	repo := event.Repository.GetName()
	number := event.PullRequest.GetNumber()
	headSHA := event.PullRequest.GetHead().GetSHA()

	s.log.Info("pull request event received",
		"repo", event.Repository.GetFullName(),
		"number", number,
		"action", event.GetAction())

	commit := worker.Commit{Owner: owner, Repo: repo, SHA: headSHA}
	if err := s.queue.QueueStatus(github.StatePending, "The pull request has been received", "", commit); err != nil {
		s.log.Error("failed to queue pending status", "error", err)
		respond(w, http.StatusInternalServerError, "Failed to queue job")
		return
	}
	if err := s.queue.QueuePullRequest(worker.PullRequestJob{
		Owner:   owner,
		Repo:    repo,
		Number:  number,
		HeadSHA: headSHA,
	}); err != nil {
		s.log.Error("failed to queue pull request", "error", err)
		respond(w, http.StatusInternalServerError, "Failed to queue job")
		return
	}

	respond(w, http.StatusOK, "Pull request queued")
}

func (e hookEvent) GetAction() string {
	if e.Action == nil {
		return ""
	}
	return *e.Action
}
