// Package clone holds the repository cloners used by the repository acquirer.
//
//   - gitcli: shallow clone through the git executable
//   - githubarchive: tarball download through the GitHub API, no git required
package clone
