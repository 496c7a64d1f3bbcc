package api

type UserResponse struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

type RepoResponse struct {
	Name            string `json:"name"`
	DefaultBranch   string `json:"default_branch"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	LanguagesURL    string `json:"languages_url"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse[T any] struct {
	Data   *T `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type viewerData struct {
	Viewer *struct {
		ContributionsCollection *ContributionsCollection `json:"contributionsCollection"`
	} `json:"viewer"`
}

type ContributionsCollection struct {
	TotalCommitContributions            int `json:"totalCommitContributions"`
	TotalPullRequestContributions       int `json:"totalPullRequestContributions"`
	TotalIssueContributions             int `json:"totalIssueContributions"`
	TotalPullRequestReviewContributions int `json:"totalPullRequestReviewContributions"`
	RestrictedContributionsCount        int `json:"restrictedContributionsCount"`

	ContributionCalendar            *ContributionCalendar    `json:"contributionCalendar"`
	CommitContributionsByRepository []RepositoryContribution `json:"commitContributionsByRepository"`
}

type ContributionCalendar struct {
	TotalContributions int                `json:"totalContributions"`
	Weeks              []ContributionWeek `json:"weeks"`
}

type ContributionWeek struct {
	ContributionDays []ContributionDay `json:"contributionDays"`
}

type ContributionDay struct {
	ContributionCount int    `json:"contributionCount"`
	Date              string `json:"date"`
}

type RepositoryContribution struct {
	Repository struct {
		Name string `json:"name"`
	} `json:"repository"`
	Contributions struct {
		TotalCount int `json:"totalCount"`
	} `json:"contributions"`
}

const calendarQuery = `
query($from: DateTime!, $to: DateTime!) {
  viewer {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
          }
        }
      }
      commitContributionsByRepository {
        repository {
          name
        }
        contributions {
          totalCount
        }
      }
    }
  }
}`

const totalQuery = `
query($from: DateTime!, $to: DateTime!) {
  viewer {
    contributionsCollection(from: $from, to: $to) {
      totalCommitContributions
      totalPullRequestContributions
      totalIssueContributions
      totalPullRequestReviewContributions
      restrictedContributionsCount
    }
  }
}`
