// Package validate assembles a pull request into an evaluation context and
// runs the repository's policy rules against it.
package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/tailorci/tailor/internal/expr"
	"github.com/tailorci/tailor/internal/github"
	"github.com/tailorci/tailor/internal/policy"
)

// disablePrefix opens an exemption comment; the rest of the comment, trimmed,
// names the exempted rule.
const disablePrefix = "tailor disable"

// exemptAll is the sentinel rule name that waives every rule.
const exemptAll = "all"

// ErrMalformedCommit marks a commit message whose second line is neither
// empty nor absent.
var ErrMalformedCommit = errors.New("malformed commit message (no empty line between title and description)")

// API is the slice of the provider adapter the validator needs.
type API interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]github.Commit, error)
	ListIssueComments(ctx context.Context, owner, repo string, number int) ([]github.Comment, error)
	GetContents(ctx context.Context, owner, repo, path, ref string) (*github.Content, error)
	GetCollaboratorPermission(ctx context.Context, owner, repo, username string) (string, error)
}

// UserView projects a GitHub account for rules.
type UserView struct {
	Login string `value:"login"`
}

// AuthorView projects git author or committer metadata for rules.
type AuthorView struct {
	Name  string    `value:"name"`
	Email string    `value:"email"`
	Date  time.Time `value:"date"`
	Login *string   `value:"github_login"`
}

// CommitView is a commit with its message parsed into title and description.
type CommitView struct {
	SHA         string     `value:"sha"`
	Author      AuthorView `value:"author"`
	Committer   AuthorView `value:"committer"`
	Title       string     `value:"title"`
	Description string     `value:"description"`
}

// CommentView projects an issue comment for rules.
type CommentView struct {
	User      UserView  `value:"user"`
	Body      string    `value:"body"`
	CreatedAt time.Time `value:"created_at"`
}

// RefView projects one end of the pull request. The SHA stays hidden so
// rules cannot depend on it.
type RefView struct {
	SHA  string   `value:"-"`
	User UserView `value:"user"`
}

// PullRequestView is the evaluation context for policy rules.
type PullRequestView struct {
	User     UserView      `value:"user"`
	Title    string        `value:"title"`
	Body     string        `value:"body"`
	Commits  []CommitView  `value:"commits"`
	Comments []CommentView `value:"comments"`
	Base     RefView       `value:"base"`
	Head     RefView       `value:"head"`
}

// Run validates a pull request against its repository policy and returns
// the ordered failure list. An error means the validation itself could not
// complete and maps to an Error status, not a Failure.
func Run(ctx context.Context, api API, owner, repo string, number int, log *slog.Logger) ([]string, error) {
	pr, err := Assemble(ctx, api, owner, repo, number)
	if err != nil {
		return nil, err
	}
	pol, err := FetchPolicy(ctx, api, owner, repo, pr.Head.SHA, log)
	if err != nil {
		return nil, err
	}
	exemptions, err := findExemptions(ctx, api, owner, repo, pr.Comments, log)
	if err != nil {
		return nil, err
	}

	input := expr.Reflect(*pr)
	var failures []string
	for _, rule := range pol.Rules {
		if slices.Contains(exemptions, exemptAll) || slices.Contains(exemptions, rule.Name) {
			log.Debug("rule exempted", "rule", rule.Name, "owner", owner, "repo", repo)
			continue
		}
		passed, err := expr.EvalRule(rule.Expression, input)
		if err != nil {
			return nil, fmt.Errorf("run rule %q from %s/%s: %w", rule.Name, owner, repo, err)
		}
		if !passed {
			failures = append(failures, fmt.Sprintf("Failed %s (%s)", rule.Name, rule.Description))
		}
	}
	return failures, nil
}

// Assemble fetches the pull request, its commits and comments, and builds
// the structured view rules evaluate against.
func Assemble(ctx context.Context, api API, owner, repo string, number int) (*PullRequestView, error) {
	pr, err := api.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	raw, err := api.ListPullRequestCommits(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	commits := make([]CommitView, 0, len(raw))
	for _, c := range raw {
		title, description, err := splitMessage(c.Commit.Message)
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", c.SHA, err)
		}
		commits = append(commits, CommitView{
			SHA: c.SHA,
			Author: AuthorView{
				Name:  c.Commit.Author.Name,
				Email: c.Commit.Author.Email,
				Date:  c.Commit.Author.Date,
				Login: optional(c.Author.Login),
			},
			Committer: AuthorView{
				Name:  c.Commit.Committer.Name,
				Email: c.Commit.Committer.Email,
				Date:  c.Commit.Committer.Date,
				Login: optional(c.Committer.Login),
			},
			Title:       title,
			Description: description,
		})
	}

	rawComments, err := api.ListIssueComments(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	comments := make([]CommentView, 0, len(rawComments))
	for _, c := range rawComments {
		comments = append(comments, CommentView{
			User:      UserView{Login: c.User.Login},
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}

	return &PullRequestView{
		User:     UserView{Login: pr.User.Login},
		Title:    pr.Title,
		Body:     pr.Body,
		Commits:  commits,
		Comments: comments,
		Base:     RefView{SHA: pr.Base.SHA, User: UserView{Login: pr.Base.User.Login}},
		Head:     RefView{SHA: pr.Head.SHA, User: UserView{Login: pr.Head.User.Login}},
	}, nil
}

// FetchPolicy loads the repository policy at a ref. A missing file is an
// empty policy.
func FetchPolicy(ctx context.Context, api API, owner, repo, ref string, log *slog.Logger) (policy.Policy, error) {
	content, err := api.GetContents(ctx, owner, repo, policy.Path, ref)
	if err != nil {
		var apiErr *github.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			log.Warn("repository has no tailor policy", "owner", owner, "repo", repo)
			return policy.Empty(), nil
		}
		return policy.Policy{}, fmt.Errorf("fetch policy for %s/%s: %w", owner, repo, err)
	}
	if content.Content == nil {
		log.Warn("repository has no tailor policy", "owner", owner, "repo", repo)
		return policy.Empty(), nil
	}
	data, err := policy.DecodeContent(*content.Content)
	if err != nil {
		return policy.Policy{}, err
	}
	return policy.Parse(data)
}

// findExemptions walks the pull request's comments for "tailor disable"
// markers and keeps the ones written by repository admins.
func findExemptions(ctx context.Context, api API, owner, repo string, comments []CommentView, log *slog.Logger) ([]string, error) {
	var exemptions []string
	for _, comment := range comments {
		if !strings.HasPrefix(comment.Body, disablePrefix) {
			continue
		}
		rest, _, _ := strings.Cut(strings.TrimPrefix(comment.Body, disablePrefix), "\n")
		name := strings.TrimSpace(rest)
		perm, err := api.GetCollaboratorPermission(ctx, owner, repo, comment.User.Login)
		if err != nil {
			return nil, fmt.Errorf("fetch collaborator permission for %s: %w", comment.User.Login, err)
		}
		if perm != github.PermissionAdmin {
			log.Debug("ignoring exemption from non-admin", "user", comment.User.Login, "rule", name)
			continue
		}
		exemptions = append(exemptions, name)
	}
	return exemptions, nil
}

// splitMessage parses a raw commit message: first line is the title, the
// second line must be empty if present, and the rest is the description.
func splitMessage(message string) (title, description string, err error) {
	lines := strings.Split(message, "\n")
	title = lines[0]
	if len(lines) > 1 && lines[1] != "" {
		return "", "", ErrMalformedCommit
	}
	if len(lines) > 2 {
		description = strings.Join(lines[2:], "\n")
	}
	return title, description, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
