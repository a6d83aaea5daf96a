package infra

import (
	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/infra/gitcli"
	"github.com/caselog-dev/caselog/pkg/infra/memcache"
)

type Clients struct {
	githubApp  interfaces.GitHubApp
	gitClient  interfaces.GitClient
	dedupCache interfaces.DedupCache
	policy     interfaces.Policy
	bqClient   interfaces.BigQuery
	caseRepo   interfaces.CaseRepository
}

type Option func(*Clients)

func New(options ...Option) *Clients {
	client := &Clients{
		gitClient:  gitcli.New("git"),
		dedupCache: memcache.New(),
	}

	for _, opt := range options {
		opt(client)
	}

	return client
}

func (x *Clients) GitHubApp() interfaces.GitHubApp {
	return x.githubApp
}
func (x *Clients) Git() interfaces.GitClient {
	return x.gitClient
}
func (x *Clients) DedupCache() interfaces.DedupCache {
	return x.dedupCache
}
func (x *Clients) Policy() interfaces.Policy {
	return x.policy
}
func (x *Clients) BigQuery() interfaces.BigQuery {
	return x.bqClient
}
func (x *Clients) CaseRepository() interfaces.CaseRepository {
	return x.caseRepo
}

func WithGitHubApp(client interfaces.GitHubApp) Option {
	return func(x *Clients) {
		x.githubApp = client
	}
}

func WithGit(client interfaces.GitClient) Option {
	return func(x *Clients) {
		x.gitClient = client
	}
}

func WithDedupCache(cache interfaces.DedupCache) Option {
	return func(x *Clients) {
		x.dedupCache = cache
	}
}

func WithPolicy(policy interfaces.Policy) Option {
	return func(x *Clients) {
		x.policy = policy
	}
}

func WithBigQuery(client interfaces.BigQuery) Option {
	return func(x *Clients) {
		x.bqClient = client
	}
}

func WithCaseRepository(repo interfaces.CaseRepository) Option {
	return func(x *Clients) {
		x.caseRepo = repo
	}
}
