// Package worker owns the job queue: a single consumer drains status posts
// and pull request validations in strict FIFO order.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tailorci/tailor/internal/github"
	"github.com/tailorci/tailor/internal/metrics"
	"github.com/tailorci/tailor/internal/statuslink"
	"github.com/tailorci/tailor/internal/validate"
)

// StatusContext is the commit status context under which verdicts appear.
const StatusContext = "tailor"

// maxDescription is the provider's commit status description limit in bytes.
const maxDescription = 140

// ErrClosed is returned by the queue operations after Close.
var ErrClosed = errors.New("worker: queue closed")

// API is the provider surface the worker needs: everything the validator
// uses plus status creation.
type API interface {
	validate.API
	CreateStatus(ctx context.Context, owner, repo, sha string, status github.Status) error
}

// Job is a single unit of work.
type Job interface {
	isJob()
}

// Commit identifies the commit a status attaches to.
type Commit struct {
	Owner string
	Repo  string
	SHA   string
}

func (c Commit) String() string {
	return fmt.Sprintf("%s/%s@%s", c.Owner, c.Repo, c.SHA)
}

// StatusJob posts one commit status.
type StatusJob struct {
	Status github.Status
	Commit Commit
}

// PullRequestJob validates one pull request.
type PullRequestJob struct {
	ID      string
	Owner   string
	Repo    string
	Number  int
	HeadSHA string
}

func (StatusJob) isJob()      {}
func (PullRequestJob) isJob() {}

func (j PullRequestJob) String() string {
	return fmt.Sprintf("%s/%s#%d (%s)", j.Owner, j.Repo, j.Number, j.HeadSHA)
}

// Worker drains an unbounded FIFO queue from a single goroutine. Producers
// never block; jobs are never dropped. All provider calls happen on the
// consumer goroutine, which serialises status posts per commit.
type Worker struct {
	api           API
	serverAddress string
	log           *slog.Logger
	metrics       *metrics.Metrics

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Job
	closed bool

	done chan struct{}
}

// Spawn starts the consumer goroutine.
func Spawn(api API, serverAddress string, log *slog.Logger, m *metrics.Metrics) *Worker {
	w := &Worker{
		api:           api,
		serverAddress: serverAddress,
		log:           log,
		metrics:       m,
		done:          make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// QueueStatus enqueues a commit status post. The description is truncated to
// the provider's limit; url may be empty.
func (w *Worker) QueueStatus(state, description, url string, commit Commit) error {
	w.log.Debug("queuing status", "state", state, "commit", commit.String())
	return w.enqueue(StatusJob{
		Status: github.Status{
			State:       state,
			Description: truncate(description, maxDescription),
			Context:     StatusContext,
			TargetURL:   url,
		},
		Commit: commit,
	}, false)
}

// QueuePullRequest enqueues a pull request validation.
func (w *Worker) QueuePullRequest(job PullRequestJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	w.log.Debug("queuing pull request", "job", job.String(), "id", job.ID)
	return w.enqueue(job, false)
}

// Close stops accepting jobs, waits for the queue to drain and stops the
// consumer. Follow-up statuses produced by in-flight validations are still
// accepted so no job is ever dropped.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.cond.Signal()
	w.mu.Unlock()
	<-w.done
}

func (w *Worker) enqueue(j Job, internal bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed && !internal {
		return ErrClosed
	}
	w.queue = append(w.queue, j)
	w.metrics.QueueDepth.Inc()
	w.cond.Signal()
	return nil
}

// next blocks until a job is available or the worker is closed with an
// empty queue.
func (w *Worker) next() (Job, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.queue) == 0 && !w.closed {
		w.cond.Wait()
	}
	if len(w.queue) == 0 {
		return nil, false
	}
	j := w.queue[0]
	w.queue = w.queue[1:]
	w.metrics.QueueDepth.Dec()
	return j, true
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		j, ok := w.next()
		if !ok {
			return
		}
		// An error in any single job never terminates the worker.
		switch job := j.(type) {
		case StatusJob:
			w.processStatus(job)
		case PullRequestJob:
			w.processPullRequest(job)
		}
	}
}

func (w *Worker) processStatus(job StatusJob) {
	w.log.Debug("processing status", "state", job.Status.State, "commit", job.Commit.String())
	err := w.api.CreateStatus(context.Background(), job.Commit.Owner, job.Commit.Repo, job.Commit.SHA, job.Status)
	if err != nil {
		w.log.Error("failed to set status", "commit", job.Commit.String(), "error", err)
		w.metrics.JobsProcessed.WithLabelValues("status", "error").Inc()
		return
	}
	w.metrics.JobsProcessed.WithLabelValues("status", "ok").Inc()
	w.metrics.StatusesPosted.WithLabelValues(job.Status.State).Inc()
}

func (w *Worker) processPullRequest(job PullRequestJob) {
	w.log.Info("processing pull request", "job", job.String(), "id", job.ID)
	start := time.Now()

	failures, err := validate.Run(context.Background(), w.api, job.Owner, job.Repo, job.Number, w.log)
	w.metrics.ValidationDuration.Observe(time.Since(start).Seconds())

	var state, description, url string
	switch {
	case err != nil:
		w.log.Warn("failed to evaluate rules", "job", job.String(), "id", job.ID, "error", err)
		state, description = github.StateError, "Failed to evaluate rules"
		url = w.statusURL(err.Error())
		w.metrics.JobsProcessed.WithLabelValues("pull_request", "error").Inc()
	case len(failures) == 0:
		state, description = github.StateSuccess, "All checks passed"
		w.metrics.JobsProcessed.WithLabelValues("pull_request", "ok").Inc()
	default:
		state, description = github.StateFailure, "One or more checks failed"
		url = w.statusURL(strings.Join(failures, "\n"))
		w.metrics.JobsProcessed.WithLabelValues("pull_request", "ok").Inc()
	}

	followUp := StatusJob{
		Status: github.Status{
			State:       state,
			Description: truncate(description, maxDescription),
			Context:     StatusContext,
			TargetURL:   url,
		},
		Commit: Commit{Owner: job.Owner, Repo: job.Repo, SHA: job.HeadSHA},
	}
	if err := w.enqueue(followUp, true); err != nil {
		w.log.Error("failed to queue validation status", "job", job.String(), "error", err)
	}
}

func (w *Worker) statusURL(text string) string {
	return fmt.Sprintf("http://%s/status?snap=%s", w.serverAddress, statuslink.Encode(text))
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Back up to a rune boundary.
	for limit > 0 && (s[limit]&0xC0) == 0x80 {
		limit--
	}
	return s[:limit]
}
