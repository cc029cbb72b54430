package github

import "time"

// Commit status states accepted by the statuses endpoint.
const (
	StatePending = "pending"
	StateSuccess = "success"
	StateFailure = "failure"
	StateError   = "error"
)

// Collaborator permission levels.
const (
	PermissionAdmin = "admin"
	PermissionWrite = "write"
	PermissionRead  = "read"
	PermissionNone  = "none"
)

// User is a GitHub account.
type User struct {
	Login string `json:"login"`
}

// CommitRef points at one end of a pull request.
type CommitRef struct {
	SHA  string `json:"sha"`
	User User   `json:"user"`
}

// PullRequest is the pull request record.
type PullRequest struct {
	User   User      `json:"user"`
	Number int       `json:"number"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	Head   CommitRef `json:"head"`
	Base   CommitRef `json:"base"`
}

// Commit is one raw commit of a pull request.
type Commit struct {
	SHA       string       `json:"sha"`
	Commit    CommitDetail `json:"commit"`
	Author    User         `json:"author"`
	Committer User         `json:"committer"`
}

// CommitDetail is the git-level part of a commit.
type CommitDetail struct {
	Author    CommitAuthor `json:"author"`
	Committer CommitAuthor `json:"committer"`
	Message   string       `json:"message"`
}

// CommitAuthor is git author or committer metadata.
type CommitAuthor struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// Comment is an issue comment on a pull request.
type Comment struct {
	User      User      `json:"user"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Content is a contents-API response; Content is nil when the file is
// absent from the response.
type Content struct {
	Content *string `json:"content"`
}

// Collaborator is a collaborator permission response.
type Collaborator struct {
	Permission string `json:"permission"`
}

// Status is a commit status to post.
type Status struct {
	State       string `json:"state"`
	Description string `json:"description"`
	Context     string `json:"context"`
	TargetURL   string `json:"target_url,omitempty"`
}
