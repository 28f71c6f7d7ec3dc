// Where: internal/infra/vcs/describe.go
// What: Descriptive tag derivation from checkout metadata.
// Why: Default image tags to "<tag>-<count>-g<hash>" the way git describe does.
package vcs

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Describe returns a descriptive tag for the checkout at dir: the nearest
// reachable tag, suffixed with "-<count>-g<short-hash>" when commits follow
// it, and "-dirty" when the worktree holds uncommitted changes. A history
// with no tags yields "g<short-hash>".
func Describe(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("resolve HEAD commit: %w", err)
	}

	tagged, err := taggedCommits(repo)
	if err != nil {
		return "", err
	}

	name, count, err := nearestTag(headCommit, tagged)
	if err != nil {
		return "", err
	}

	short := head.Hash().String()[:7]
	described := ""
	switch {
	case name == "":
		described = "g" + short
	case count == 0:
		described = name
	default:
		described = fmt.Sprintf("%s-%d-g%s", name, count, short)
	}

	dirty, err := worktreeDirty(repo)
	if err != nil {
		return "", err
	}
	if dirty {
		described += "-dirty"
	}
	return described, nil
}

// taggedCommits maps commit hashes to tag names, peeling annotated tags to
// their target commits.
func taggedCommits(repo *git.Repository) (map[plumbing.Hash]string, error) {
	tags, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	tagged := map[plumbing.Hash]string{}
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if tagObj, terr := repo.TagObject(hash); terr == nil {
			hash = tagObj.Target
		}
		if _, exists := tagged[hash]; !exists {
			tagged[hash] = ref.Name().Short()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk tags: %w", err)
	}
	return tagged, nil
}

// nearestTag walks history from head and returns the first tagged commit
// along with the number of commits between it and head.
func nearestTag(head *object.Commit, tagged map[plumbing.Hash]string) (string, int, error) {
	var name string
	count := 0
	iter := object.NewCommitPreorderIter(head, nil, nil)
	err := iter.ForEach(func(c *object.Commit) error {
		if n, ok := tagged[c.Hash]; ok {
			name = n
			return storer.ErrStop
		}
		count++
		return nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("walk history: %w", err)
	}
	if name == "" {
		return "", 0, nil
	}
	return name, count, nil
}

func worktreeDirty(repo *git.Repository) (bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("worktree status: %w", err)
	}
	return !status.IsClean(), nil
}
