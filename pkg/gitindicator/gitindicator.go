// Package gitindicator computes the per-file and per-repository git
// indicators attached to indicator-tree nodes: last-update time, age,
// creation date, the set of unique changers, and the day/user-set and
// per-commit activity breakdowns.
package gitindicator

import (
	"fmt"
	"sort"

	"github.com/teratoma-labs/polyglotscan/pkg/filehistory"
	"github.com/teratoma-labs/polyglotscan/pkg/gitlib"
	"github.com/teratoma-labs/polyglotscan/pkg/gitlog"
	"github.com/teratoma-labs/polyglotscan/pkg/identity"
)

const secondsPerDay = 86400

// GitDetails aggregates commits sharing one (day, unique-user-set) key.
type GitDetails struct {
	Day          int64 `json:"day"`
	Users        []int `json:"users"`
	Commits      int   `json:"commits"`
	LinesAdded   int   `json:"lines_added"`
	LinesDeleted int   `json:"lines_deleted"`
}

// GitActivity is one file-history entry's worth of git activity.
type GitActivity struct {
	AuthorTime   int64            `json:"author_time"`
	CommitTime   int64            `json:"commit_time"`
	Users        []int            `json:"users"`
	Kind         gitlog.ChangeKind `json:"kind"`
	LinesAdded   int              `json:"lines_added"`
	LinesDeleted int              `json:"lines_deleted"`
}

// FileGitData is the file-variant of the git node indicator.
type FileGitData struct {
	LastUpdate   int64        `json:"last_update"`
	AgeInDays    int64        `json:"age_in_days"`
	CreationDate *int64       `json:"creation_date,omitempty"`
	Users        []int        `json:"users"`
	Details      []GitDetails `json:"details,omitempty"`
	Activity     []GitActivity `json:"activity,omitempty"`
}

// RepoGitData is the directory-variant of the git node indicator, attached
// only at the directory hosting .git.
type RepoGitData struct {
	RemoteURL  *string `json:"remote_url,omitempty"`
	HeadCommit *string `json:"head_commit,omitempty"`
}

// ComputeFile computes the file-variant git indicator from a file's history
// entries. It returns nil if entries is empty, leaving the indicator unset.
// lastCommit is the maximum commit time seen across the whole repository's
// log (filehistory.History.LastCommit), used for age_in_days.
func ComputeFile(dict *identity.Dictionary, entries []filehistory.Entry, lastCommit int64) *FileGitData {
	if len(entries) == 0 {
		return nil
	}

	var lastUpdate int64

	minAuthorTimeOverall := entries[0].AuthorTime

	var (
		hasAdd          bool
		minAddAuthorTime int64
	)

	type detailAgg struct {
		day     int64
		users   []int
		commits int
		added   int
		deleted int
	}

	detailsByKey := make(map[string]*detailAgg)

	var detailOrder []*detailAgg

	activity := make([]GitActivity, 0, len(entries))

	for _, e := range entries {
		if e.CommitTime > lastUpdate {
			lastUpdate = e.CommitTime
		}

		if e.AuthorTime < minAuthorTimeOverall {
			minAuthorTimeOverall = e.AuthorTime
		}

		if e.Kind == gitlog.Add && (!hasAdd || e.AuthorTime < minAddAuthorTime) {
			hasAdd = true
			minAddAuthorTime = e.AuthorTime
		}

		users := uniqueChangers(dict, e)
		day := startOfDay(e.AuthorTime)
		dkey := detailKey(day, users)

		agg, ok := detailsByKey[dkey]
		if !ok {
			agg = &detailAgg{day: day, users: users}
			detailsByKey[dkey] = agg
			detailOrder = append(detailOrder, agg)
		}

		agg.commits++
		agg.added += e.LinesAdded
		agg.deleted += e.LinesDeleted

		activity = append(activity, GitActivity{
			AuthorTime:   e.AuthorTime,
			CommitTime:   e.CommitTime,
			Users:        users,
			Kind:         e.Kind,
			LinesAdded:   e.LinesAdded,
			LinesDeleted: e.LinesDeleted,
		})
	}

	var creationDate *int64

	if hasAdd && minAddAuthorTime <= minAuthorTimeOverall {
		t := minAddAuthorTime
		creationDate = &t
	}

	sort.Slice(detailOrder, func(i, j int) bool {
		if detailOrder[i].day != detailOrder[j].day {
			return detailOrder[i].day < detailOrder[j].day
		}

		return lessUserSlice(detailOrder[i].users, detailOrder[j].users)
	})

	details := make([]GitDetails, len(detailOrder))
	for i, agg := range detailOrder {
		details[i] = GitDetails{
			Day:          agg.day,
			Users:        agg.users,
			Commits:      agg.commits,
			LinesAdded:   agg.added,
			LinesDeleted: agg.deleted,
		}
	}

	sort.Slice(activity, func(i, j int) bool { return activity[i].CommitTime < activity[j].CommitTime })

	userSet := make(map[int]struct{})
	for _, a := range activity {
		for _, u := range a.Users {
			userSet[u] = struct{}{}
		}
	}

	users := make([]int, 0, len(userSet))
	for u := range userSet {
		users = append(users, u)
	}

	sort.Ints(users)

	return &FileGitData{
		LastUpdate:   lastUpdate,
		AgeInDays:    (lastCommit - lastUpdate) / secondsPerDay,
		CreationDate: creationDate,
		Users:        users,
		Details:      details,
		Activity:     activity,
	}
}

// ComputeRepo computes the directory-variant git indicator for a repository.
// Remote lookup failure is non-fatal: RemoteURL is left nil.
func ComputeRepo(repo *gitlib.Repository) RepoGitData {
	var data RepoGitData

	if head, err := repo.Head(); err == nil {
		s := head.String()
		data.HeadCommit = &s
	}

	if native := repo.Native(); native != nil {
		if remote, err := native.Remotes.Lookup("origin"); err == nil {
			url := remote.Url()
			data.RemoteURL = &url

			remote.Free()
		}
	}

	return data
}

func uniqueChangers(dict *identity.Dictionary, e filehistory.Entry) []int {
	seen := make(map[int]struct{}, len(e.CoAuthors)+2)

	var ids []int

	add := func(u identity.User) {
		id := dict.Register(u)
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	add(e.Author)
	add(e.Committer)

	for _, co := range e.CoAuthors {
		add(co)
	}

	sort.Ints(ids)

	return ids
}

func startOfDay(authorTime int64) int64 {
	day := authorTime / secondsPerDay
	if authorTime%secondsPerDay != 0 && authorTime < 0 {
		day--
	}

	return day * secondsPerDay
}

func detailKey(day int64, users []int) string {
	return fmt.Sprintf("%d|%v", day, users)
}

func lessUserSlice(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return len(a) < len(b)
}
