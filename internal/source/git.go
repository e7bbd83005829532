package source

import (
	git "github.com/go-git/go-git/v5"
)

// headRef returns the HEAD commit hash and branch name of the repository
// containing root, when one exists.
func headRef(root string) (commit, branch string, err error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", "", err
	}

	commit = head.Hash().String()
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}
	return commit, branch, nil
}
